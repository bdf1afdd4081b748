package product

import (
	"context"

	"nutriplan/domain"
)

type (
	ProductService interface {
		ListProducts(ctx context.Context) ([]domain.ProductResponse, error)
	}

	productService struct {
		productRepository ProductRepository
	}
)

func NewProductService(productRepository ProductRepository) ProductService {
	return &productService{productRepository: productRepository}
}

func (s *productService) ListProducts(ctx context.Context) ([]domain.ProductResponse, error) {
	products, err := s.productRepository.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]domain.ProductResponse, 0, len(products))
	for _, p := range products {
		res = append(res, domain.ProductResponse{ID: p.ID, Name: p.Name, Region: p.Region})
	}
	return res, nil
}
