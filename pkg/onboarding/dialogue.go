package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"nutriplan/domain"
)

type (
	// BiometricsSaver persists the finished questionnaire.
	BiometricsSaver interface {
		SaveBiometrics(ctx context.Context, telegramID int64, b domain.Biometrics) error
	}

	Dialogue interface {
		Begin(ctx context.Context, telegramID int64) (domain.StepResult, error)
		Answer(ctx context.Context, telegramID int64, text string) (domain.StepResult, error)
		Cancel(ctx context.Context, telegramID int64) (bool, error)
		Active(ctx context.Context, telegramID int64) (bool, error)
	}

	dialogue struct {
		store     SessionStore
		saver     BiometricsSaver
		validator *validator.Validate
		logger    *zap.Logger
	}
)

var nextStep = map[domain.OnboardingStep]domain.OnboardingStep{
	domain.StepAge:      domain.StepGender,
	domain.StepGender:   domain.StepWeight,
	domain.StepWeight:   domain.StepHeight,
	domain.StepHeight:   domain.StepActivity,
	domain.StepActivity: domain.StepGoal,
	domain.StepGoal:     domain.StepDone,
}

const (
	ageRule    = "gte=18,lte=100"
	weightRule = "gte=30,lte=200"
	heightRule = "gte=100,lte=250"
)

func NewDialogue(store SessionStore, saver BiometricsSaver, validator *validator.Validate, logger *zap.Logger) Dialogue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &dialogue{
		store:     store,
		saver:     saver,
		validator: validator,
		logger:    logger,
	}
}

// Begin discards any previous progress and starts at the age step.
func (d *dialogue) Begin(ctx context.Context, telegramID int64) (domain.StepResult, error) {
	session := domain.OnboardingSession{TelegramID: telegramID, Step: domain.StepAge}
	if err := d.store.Save(ctx, session); err != nil {
		return domain.StepResult{}, err
	}
	return domain.StepResult{Step: domain.StepAge, Accepted: true}, nil
}

func (d *dialogue) Active(ctx context.Context, telegramID int64) (bool, error) {
	_, err := d.store.Get(ctx, telegramID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (d *dialogue) Cancel(ctx context.Context, telegramID int64) (bool, error) {
	return d.store.Delete(ctx, telegramID)
}

// Answer applies one free-text reply to the current step. A rejected answer
// leaves the stored session untouched and reports the same step again.
func (d *dialogue) Answer(ctx context.Context, telegramID int64, text string) (domain.StepResult, error) {
	session, err := d.store.Get(ctx, telegramID)
	if err != nil {
		return domain.StepResult{}, err
	}

	current := session.Step
	goal, err := d.apply(&session, text)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidAnswer) {
			d.logger.Debug("onboarding answer rejected",
				zap.Int64("telegram_id", telegramID),
				zap.String("step", string(current)),
			)
			return domain.StepResult{Step: current, Accepted: false}, nil
		}
		return domain.StepResult{}, err
	}

	session.Step = nextStep[current]
	if session.Step != domain.StepDone {
		if err := d.store.Save(ctx, session); err != nil {
			return domain.StepResult{}, err
		}
		return domain.StepResult{Step: session.Step, Accepted: true}, nil
	}

	b := domain.Biometrics{
		Age:           *session.Age,
		Gender:        *session.Gender,
		Weight:        *session.Weight,
		Height:        *session.Height,
		ActivityLevel: *session.ActivityLevel,
		Goal:          goal,
	}
	if err := d.saver.SaveBiometrics(ctx, telegramID, b); err != nil {
		return domain.StepResult{}, fmt.Errorf("persist onboarding result: %w", err)
	}
	if _, err := d.store.Delete(ctx, telegramID); err != nil {
		d.logger.Warn("failed to clear onboarding session", zap.Int64("telegram_id", telegramID), zap.Error(err))
	}
	return domain.StepResult{Step: domain.StepDone, Accepted: true, Finished: true}, nil
}

// apply parses text for the session's current step and stores the value.
// The goal is returned rather than stored since it ends the dialogue.
func (d *dialogue) apply(session *domain.OnboardingSession, text string) (domain.Goal, error) {
	text = strings.TrimSpace(text)
	switch session.Step {
	case domain.StepAge:
		age, err := strconv.Atoi(text)
		if err != nil || d.validator.Var(age, ageRule) != nil {
			return "", domain.ErrInvalidAnswer
		}
		session.Age = &age
	case domain.StepGender:
		g, ok := lookup(genderOptions, text)
		if !ok {
			return "", domain.ErrInvalidAnswer
		}
		session.Gender = &g
	case domain.StepWeight:
		w, err := parseDecimal(text)
		if err != nil || d.validator.Var(w, weightRule) != nil {
			return "", domain.ErrInvalidAnswer
		}
		session.Weight = &w
	case domain.StepHeight:
		h, err := parseDecimal(text)
		if err != nil || d.validator.Var(h, heightRule) != nil {
			return "", domain.ErrInvalidAnswer
		}
		session.Height = &h
	case domain.StepActivity:
		a, ok := lookup(activityOptions, text)
		if !ok {
			return "", domain.ErrInvalidAnswer
		}
		session.ActivityLevel = &a
	case domain.StepGoal:
		g, ok := lookup(goalOptions, text)
		if !ok {
			return "", domain.ErrInvalidAnswer
		}
		if session.Age == nil || session.Gender == nil || session.Weight == nil ||
			session.Height == nil || session.ActivityLevel == nil {
			return "", fmt.Errorf("onboarding session %d reached goal with missing answers", session.TelegramID)
		}
		return g, nil
	default:
		return "", fmt.Errorf("unknown onboarding step %q", session.Step)
	}
	return "", nil
}

func parseDecimal(text string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
}
