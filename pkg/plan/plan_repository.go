package plan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"nutriplan/domain"
	"nutriplan/entities"
)

const dateLayout = "2006-01-02"

type (
	PlanRepository interface {
		ReplaceHorizon(ctx context.Context, userID uint, from, to time.Time, dishes []entities.Dish) error
		GetDishesInRange(ctx context.Context, userID uint, from, to time.Time) ([]entities.Dish, error)
		GetDishByID(ctx context.Context, id uint) (*entities.Dish, error)
	}

	planRepository struct {
		db *gorm.DB
	}
)

func NewPlanRepository(db *gorm.DB) PlanRepository {
	return &planRepository{db: db}
}

// dishesBetween limits dishes to the calendar days [from, to]. The upper bound is
// exclusive on the following midnight.
func dishesBetween(db *gorm.DB, userID uint, from, to time.Time) *gorm.DB {
	return db.Where("user_id = ? AND date >= ? AND date < ?", userID, from, to.AddDate(0, 0, 1))
}

// ReplaceHorizon removes the user's dishes dated within [from, to] and
// inserts the new set in one transaction.
func (r *planRepository) ReplaceHorizon(ctx context.Context, userID uint, from, to time.Time, dishes []entities.Dish) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := dishesBetween(tx, userID, from, to).Delete(&entities.Dish{}).Error; err != nil {
			return err
		}
		if len(dishes) == 0 {
			return nil
		}
		return tx.CreateInBatches(&dishes, 100).Error
	})
	if err != nil {
		return fmt.Errorf("replace dishes: %w", err)
	}
	return nil
}

func (r *planRepository) GetDishesInRange(ctx context.Context, userID uint, from, to time.Time) ([]entities.Dish, error) {
	var dishes []entities.Dish
	if err := dishesBetween(r.db.WithContext(ctx), userID, from, to).
		Order("date ASC").
		Order("id ASC").
		Find(&dishes).Error; err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	return dishes, nil
}

func (r *planRepository) GetDishByID(ctx context.Context, id uint) (*entities.Dish, error) {
	var dish entities.Dish
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&dish).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrDishNotFound
		}
		return nil, fmt.Errorf("get dish: %w", err)
	}
	return &dish, nil
}
