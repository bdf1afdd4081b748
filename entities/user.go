package entities

import (
	"time"
)

// User is the per-Telegram-identity nutrition profile. Biometric and target
// columns are nullable until onboarding and /calculate fill them.
type User struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	TelegramID int64 `gorm:"uniqueIndex;not null" json:"telegram_id"`

	Age           *int     `json:"age,omitempty"`
	Gender        *string  `gorm:"size:16" json:"gender,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Height        *float64 `json:"height,omitempty"`
	ActivityLevel *string  `gorm:"size:16" json:"activity_level,omitempty"`
	Goal          *string  `gorm:"size:16" json:"goal,omitempty"`

	CalorieTarget      *float64 `json:"calorie_target,omitempty"`
	ProteinTargetGrams *float64 `json:"protein_target_grams,omitempty"`
	FatTargetGrams     *float64 `json:"fat_target_grams,omitempty"`
	CarbTargetGrams    *float64 `json:"carb_target_grams,omitempty"`

	WeekWindowStart  *time.Time `gorm:"type:date" json:"week_window_start,omitempty"`
	WeekRequestCount int        `gorm:"not null;default:0" json:"week_request_count"`

	Dishes []Dish `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Timestamp
}

func (u *User) HasBiometrics() bool {
	return u.Age != nil && u.Gender != nil && u.Weight != nil &&
		u.Height != nil && u.ActivityLevel != nil && u.Goal != nil
}

func (u *User) HasTargets() bool {
	return u.CalorieTarget != nil && u.ProteinTargetGrams != nil &&
		u.FatTargetGrams != nil && u.CarbTargetGrams != nil &&
		u.Goal != nil && *u.CalorieTarget > 0
}
