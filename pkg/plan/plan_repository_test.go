package plan

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"nutriplan/domain"
	"nutriplan/entities"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "nutriplan.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&entities.User{}, &entities.Dish{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func createUser(t *testing.T, db *gorm.DB, telegramID int64) uint {
	t.Helper()
	u := entities.User{TelegramID: telegramID}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u.ID
}

func dishOn(userID uint, date time.Time, name string, grams float64) entities.Dish {
	return entities.Dish{
		UserID:      userID,
		Date:        date,
		Name:        name,
		Ingredients: []entities.DishIngredient{{Product: "Рис", Grams: grams}},
		Recipe:      "Варить.",
	}
}

func TestReplaceHorizonKeepsOnlyNewDishes(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlanRepository(db)
	ctx := context.Background()

	today := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	last := today.AddDate(0, 0, horizonDays-1)
	yesterday := today.AddDate(0, 0, -1)

	owner := createUser(t, db, 1)
	other := createUser(t, db, 2)

	first := []entities.Dish{
		dishOn(owner, today, "Старый плов", 100),
		dishOn(owner, today.AddDate(0, 0, 3), "Старая каша", 100),
		dishOn(owner, last, "Старый суп", 100),
	}
	if err := repo.ReplaceHorizon(ctx, owner, today, last, first); err != nil {
		t.Fatalf("first replace: %v", err)
	}
	if err := db.Create(&[]entities.Dish{
		dishOn(owner, yesterday, "Вчерашний ужин", 50),
		dishOn(other, today, "Чужой обед", 70),
	}).Error; err != nil {
		t.Fatalf("seed dishes: %v", err)
	}

	second := []entities.Dish{
		dishOn(owner, today, "Омлет", 120),
		dishOn(owner, last, "Рагу", 80),
	}
	if err := repo.ReplaceHorizon(ctx, owner, today, last, second); err != nil {
		t.Fatalf("second replace: %v", err)
	}

	got, err := repo.GetDishesInRange(ctx, owner, today, last)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Омлет" || got[1].Name != "Рагу" {
		t.Fatalf("expected only the new dishes in order, got %+v", got)
	}
	if len(got[0].Ingredients) != 1 || got[0].Ingredients[0].Product != "Рис" || got[0].Ingredients[0].Grams != 120 {
		t.Fatalf("ingredients not stored: %+v", got[0].Ingredients)
	}

	before, err := repo.GetDishesInRange(ctx, owner, yesterday, yesterday)
	if err != nil || len(before) != 1 {
		t.Fatalf("dishes outside the horizon must stay, got %+v (%v)", before, err)
	}
	others, err := repo.GetDishesInRange(ctx, other, today, last)
	if err != nil || len(others) != 1 {
		t.Fatalf("other users' dishes must stay, got %+v (%v)", others, err)
	}
}

func TestGetDishByID(t *testing.T) {
	db := newTestDB(t)
	repo := NewPlanRepository(db)
	ctx := context.Background()

	owner := createUser(t, db, 1)
	dish := dishOn(owner, time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), "Плов", 100)
	if err := db.Create(&dish).Error; err != nil {
		t.Fatalf("create dish: %v", err)
	}

	got, err := repo.GetDishByID(ctx, dish.ID)
	if err != nil || got.Name != "Плов" || got.UserID != owner {
		t.Fatalf("unexpected dish %+v (%v)", got, err)
	}
	if _, err := repo.GetDishByID(ctx, dish.ID+100); !errors.Is(err, domain.ErrDishNotFound) {
		t.Fatalf("expected ErrDishNotFound, got %v", err)
	}
}
