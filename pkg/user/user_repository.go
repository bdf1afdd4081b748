package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nutriplan/domain"
	"nutriplan/entities"
)

type (
	UserRepository interface {
		GetByTelegramID(ctx context.Context, telegramID int64) (*entities.User, error)
		SaveBiometrics(ctx context.Context, telegramID int64, b domain.Biometrics) (*entities.User, error)
		SaveTargets(ctx context.Context, telegramID int64, t domain.Targets) error
		ConsumeWeeklyRequest(ctx context.Context, telegramID int64, today time.Time, limit int) (*entities.User, error)
	}

	userRepository struct {
		db *gorm.DB
	}
)

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*entities.User, error) {
	var user entities.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get user by telegram id: %w", err)
	}
	return &user, nil
}

// SaveBiometrics creates or updates the profile. Stored targets are reset to
// NULL so that /calculate has to run again before the next plan request.
func (r *userRepository) SaveBiometrics(ctx context.Context, telegramID int64, b domain.Biometrics) (*entities.User, error) {
	gender := string(b.Gender)
	activity := string(b.ActivityLevel)
	goal := string(b.Goal)
	user := entities.User{
		TelegramID:    telegramID,
		Age:           &b.Age,
		Gender:        &gender,
		Weight:        &b.Weight,
		Height:        &b.Height,
		ActivityLevel: &activity,
		Goal:          &goal,
	}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"age", "gender", "weight", "height", "activity_level", "goal",
			"calorie_target", "protein_target_grams", "fat_target_grams", "carb_target_grams",
			"updated_at",
		}),
	}).Create(&user).Error
	if err != nil {
		return nil, fmt.Errorf("save biometrics: %w", err)
	}
	return r.GetByTelegramID(ctx, telegramID)
}

func (r *userRepository) SaveTargets(ctx context.Context, telegramID int64, t domain.Targets) error {
	res := r.db.WithContext(ctx).Model(&entities.User{}).
		Where("telegram_id = ?", telegramID).
		Updates(map[string]any{
			"calorie_target":       t.Calories,
			"protein_target_grams": t.ProteinGrams,
			"fat_target_grams":     t.FatGrams,
			"carb_target_grams":    t.CarbGrams,
		})
	if res.Error != nil {
		return fmt.Errorf("save targets: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrProfileNotFound
	}
	return nil
}

// ConsumeWeeklyRequest locks the user row, applies the weekly window and
// persists the new counter in the same transaction. The caller must do this
// before contacting the generator.
func (r *userRepository) ConsumeWeeklyRequest(ctx context.Context, telegramID int64, today time.Time, limit int) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("telegram_id = ?", telegramID).
			First(&user).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrProfileNotFound
			}
			return err
		}
		if !user.HasTargets() {
			return domain.ErrTargetsNotSet
		}

		start, count, err := NextWeeklyWindow(user.WeekWindowStart, user.WeekRequestCount, today, limit)
		if err != nil {
			return err
		}
		if err := tx.Model(&user).Updates(map[string]any{
			"week_window_start":  start,
			"week_request_count": count,
		}).Error; err != nil {
			return err
		}
		user.WeekWindowStart = &start
		user.WeekRequestCount = count
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) ||
			errors.Is(err, domain.ErrTargetsNotSet) ||
			errors.Is(err, domain.ErrWeeklyLimitReached) {
			return nil, err
		}
		return nil, fmt.Errorf("consume weekly request: %w", err)
	}
	return &user, nil
}
