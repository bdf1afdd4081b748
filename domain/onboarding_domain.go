package domain

import "errors"

type OnboardingStep string

const (
	StepAge      OnboardingStep = "age"
	StepGender   OnboardingStep = "gender"
	StepWeight   OnboardingStep = "weight"
	StepHeight   OnboardingStep = "height"
	StepActivity OnboardingStep = "activity"
	StepGoal     OnboardingStep = "goal"
	StepDone     OnboardingStep = "done"
)

var (
	ErrSessionNotFound = errors.New("onboarding session not found")
	ErrInvalidAnswer   = errors.New("invalid onboarding answer")
)

type (
	// OnboardingSession is the per-identity dialogue progress. Fields are
	// filled in step order; unset ones stay nil.
	OnboardingSession struct {
		TelegramID    int64          `json:"telegram_id"`
		Step          OnboardingStep `json:"step"`
		Age           *int           `json:"age,omitempty"`
		Gender        *Gender        `json:"gender,omitempty"`
		Weight        *float64       `json:"weight,omitempty"`
		Height        *float64       `json:"height,omitempty"`
		ActivityLevel *ActivityLevel `json:"activity_level,omitempty"`
	}

	// StepResult is what the dialogue reports back after one answer.
	// Accepted is false when the same step is re-prompted.
	StepResult struct {
		Step     OnboardingStep
		Accepted bool
		Finished bool
	}
)
