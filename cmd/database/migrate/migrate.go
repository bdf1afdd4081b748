package migration

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"nutriplan/entities"
	"nutriplan/pkg/product"
)

func Migrate(db *gorm.DB, log *zap.Logger) error {
	if err := db.AutoMigrate(&entities.User{}); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	if err := db.AutoMigrate(&entities.AvailableProduct{}); err != nil {
		return fmt.Errorf("migrate available products: %w", err)
	}
	if err := db.AutoMigrate(&entities.Dish{}); err != nil {
		return fmt.Errorf("migrate dishes: %w", err)
	}

	log.Info("database migration complete")
	return nil
}

// Seed inserts the default ingredient catalog. Existing names are kept.
func Seed(ctx context.Context, db *gorm.DB, log *zap.Logger) error {
	inserted, err := product.NewProductRepository(db).Seed(ctx, product.DefaultCatalog())
	if err != nil {
		return fmt.Errorf("seed available products: %w", err)
	}

	log.Info("ingredient catalog seeded", zap.Int64("inserted", inserted))
	return nil
}
