package onboarding

import (
	"strings"

	"nutriplan/domain"
)

type option[T ~string] struct {
	Label string
	Value T
}

var genderOptions = []option[domain.Gender]{
	{"Мужской", domain.GenderMale},
	{"Женский", domain.GenderFemale},
}

var activityOptions = []option[domain.ActivityLevel]{
	{"Низкий", domain.ActivityLow},
	{"Средний", domain.ActivityMedium},
	{"Высокий", domain.ActivityHigh},
}

var goalOptions = []option[domain.Goal]{
	{"Сбросить вес", domain.GoalLoss},
	{"Поддержание веса", domain.GoalMaintain},
	{"Набор массы", domain.GoalGain},
}

func lookup[T ~string](opts []option[T], text string) (T, bool) {
	text = strings.TrimSpace(text)
	for _, o := range opts {
		if strings.EqualFold(o.Label, text) {
			return o.Value, true
		}
	}
	var zero T
	return zero, false
}

func labels[T ~string](opts []option[T]) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Label)
	}
	return out
}

func labelOf[T ~string](opts []option[T], v T) string {
	for _, o := range opts {
		if o.Value == v {
			return o.Label
		}
	}
	return string(v)
}

// Choices returns the button labels for steps that take a fixed answer.
func Choices(step domain.OnboardingStep) []string {
	switch step {
	case domain.StepGender:
		return labels(genderOptions)
	case domain.StepActivity:
		return labels(activityOptions)
	case domain.StepGoal:
		return labels(goalOptions)
	default:
		return nil
	}
}

func GenderLabel(g domain.Gender) string          { return labelOf(genderOptions, g) }
func ActivityLabel(a domain.ActivityLevel) string { return labelOf(activityOptions, a) }
func GoalLabel(g domain.Goal) string              { return labelOf(goalOptions, g) }
