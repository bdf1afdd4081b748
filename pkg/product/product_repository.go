package product

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"nutriplan/entities"
)

type (
	ProductRepository interface {
		GetAll(ctx context.Context) ([]entities.AvailableProduct, error)
		Seed(ctx context.Context, products []entities.AvailableProduct) (int64, error)
	}

	productRepository struct {
		db *gorm.DB
	}
)

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetAll(ctx context.Context) ([]entities.AvailableProduct, error) {
	var products []entities.AvailableProduct
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("list available products: %w", err)
	}
	return products, nil
}

// Seed inserts catalog rows, skipping names that already exist.
func (r *productRepository) Seed(ctx context.Context, products []entities.AvailableProduct) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&products)
	if res.Error != nil {
		return 0, fmt.Errorf("seed available products: %w", res.Error)
	}
	return res.RowsAffected, nil
}
