package domain

import (
	"errors"
	"time"
)

type (
	Gender        string
	ActivityLevel string
	Goal          string
)

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"

	ActivityLow    ActivityLevel = "low"
	ActivityMedium ActivityLevel = "medium"
	ActivityHigh   ActivityLevel = "high"

	GoalLoss     Goal = "loss"
	GoalMaintain Goal = "maintain"
	GoalGain     Goal = "gain"
)

var (
	MessageSuccessGetProfile   = "success get profile"
	MessageSuccessCalculate    = "targets calculated successfully"
	MessageSuccessGetProducts  = "success get products"
	MessageSuccessIssueToken   = "token issued successfully"
	MessageFailedGetProfile    = "failed to get profile"
	MessageFailedCalculate     = "failed to calculate targets"
	MessageFailedGetProducts   = "failed to get products"
	MessageFailedSaveBiometric = "failed to save biometrics"

	ErrProfileNotFound   = errors.New("profile not found")
	ErrProfileIncomplete = errors.New("profile biometrics incomplete")
	ErrTargetsNotSet     = errors.New("calorie targets not set")
	ErrInvalidBiometrics = errors.New("invalid biometrics")
)

type (
	// Biometrics is the raw onboarding result. The validate tags mirror the
	// dialogue ranges so the HTTP and chat paths share one rule set.
	Biometrics struct {
		Age           int           `json:"age" validate:"required,gte=18,lte=100"`
		Gender        Gender        `json:"gender" validate:"required,oneof=male female"`
		Weight        float64       `json:"weight" validate:"required,gte=30,lte=200"`
		Height        float64       `json:"height" validate:"required,gte=100,lte=250"`
		ActivityLevel ActivityLevel `json:"activity_level" validate:"required,oneof=low medium high"`
		Goal          Goal          `json:"goal" validate:"required,oneof=loss maintain gain"`
	}

	Targets struct {
		Calories     float64 `json:"calories"`
		ProteinGrams float64 `json:"protein_grams"`
		FatGrams     float64 `json:"fat_grams"`
		CarbGrams    float64 `json:"carb_grams"`
	}

	ProfileResponse struct {
		TelegramID       int64       `json:"telegram_id"`
		Biometrics       *Biometrics `json:"biometrics,omitempty"`
		Targets          *Targets    `json:"targets,omitempty"`
		WeekWindowStart  *time.Time  `json:"week_window_start,omitempty"`
		WeekRequestCount int         `json:"week_request_count"`
	}

	ProductResponse struct {
		ID     uint   `json:"id"`
		Name   string `json:"name"`
		Region string `json:"region"`
	}

	TokenResponse struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
	}
)
