package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nutriplan/domain"
	"nutriplan/internal/api/presenters"
	"nutriplan/pkg/product"
)

type (
	ProductHandler interface {
		GetProducts(c *fiber.Ctx) error
	}

	productHandler struct {
		productService product.ProductService
		logger         *zap.Logger
	}
)

func NewProductHandler(productService product.ProductService, logger *zap.Logger) ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &productHandler{productService: productService, logger: logger}
}

func (h *productHandler) GetProducts(c *fiber.Ctx) error {
	res, err := h.productService.ListProducts(c.UserContext())
	if err != nil {
		return failed(c, h.logger, domain.MessageFailedGetProducts, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetProducts)
}
