package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nutriplan/domain"
	"nutriplan/internal/api/presenters"
	"nutriplan/internal/middleware"
	"nutriplan/pkg/plan"
)

type (
	PlanHandler interface {
		Generate(c *fiber.Ctx) error
		Today(c *fiber.Ctx) error
		Week(c *fiber.Ctx) error
		ShoppingList(c *fiber.Ctx) error
		DishDetail(c *fiber.Ctx) error
	}

	planHandler struct {
		planService plan.PlanService
		logger      *zap.Logger
	}
)

func NewPlanHandler(planService plan.PlanService, logger *zap.Logger) PlanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &planHandler{planService: planService, logger: logger}
}

func (h *planHandler) Generate(c *fiber.Ctx) error {
	telegramID, _ := middleware.TelegramID(c)

	res, err := h.planService.GenerateWeeklyPlan(c.UserContext(), telegramID)
	if err != nil {
		return failed(c, h.logger, domain.MessageFailedGeneratePlan, err)
	}

	switch res.Outcome {
	case domain.OutcomeGenerated:
		return presenters.SuccessResponse(c, res, fiber.StatusCreated, domain.MessageSuccessGeneratePlan)
	case domain.OutcomeNotSaved:
		return presenters.ErrorResponse(c, fiber.StatusInternalServerError, domain.MessageFailedGeneratePlan, domain.ErrInternal)
	default:
		return presenters.ErrorResponse(c, fiber.StatusBadGateway, domain.MessageFailedGeneratePlan, domain.ErrMalformedPlan)
	}
}

func (h *planHandler) Today(c *fiber.Ctx) error {
	telegramID, _ := middleware.TelegramID(c)

	res, err := h.planService.TodayDishes(c.UserContext(), telegramID)
	if err != nil {
		return failed(c, h.logger, domain.MessageFailedGetPlan, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetPlan)
}

func (h *planHandler) Week(c *fiber.Ctx) error {
	telegramID, _ := middleware.TelegramID(c)

	res, err := h.planService.WeekDishes(c.UserContext(), telegramID)
	if err != nil {
		return failed(c, h.logger, domain.MessageFailedGetPlan, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetPlan)
}

func (h *planHandler) ShoppingList(c *fiber.Ctx) error {
	telegramID, _ := middleware.TelegramID(c)

	items, err := h.planService.ShoppingList(c.UserContext(), telegramID)
	if err != nil {
		return failed(c, h.logger, domain.MessageFailedGetShopping, err)
	}
	return presenters.SuccessResponse(c, domain.ShoppingListResponse{Items: items}, fiber.StatusOK, domain.MessageSuccessGetShopping)
}

func (h *planHandler) DishDetail(c *fiber.Ctx) error {
	telegramID, _ := middleware.TelegramID(c)

	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedGetDish, domain.ErrInvalidDishID)
	}

	res, err := h.planService.DishDetail(c.UserContext(), telegramID, uint(id))
	if err != nil {
		return failed(c, h.logger, domain.MessageFailedGetDish, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetDish)
}
