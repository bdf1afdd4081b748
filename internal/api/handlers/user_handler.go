package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nutriplan/domain"
	"nutriplan/internal/api/presenters"
	"nutriplan/internal/middleware"
	"nutriplan/pkg/user"
)

type (
	UserHandler interface {
		Me(c *fiber.Ctx) error
		SaveBiometrics(c *fiber.Ctx) error
		Calculate(c *fiber.Ctx) error
	}

	userHandler struct {
		userService user.UserService
		validator   *validator.Validate
		logger      *zap.Logger
	}
)

func NewUserHandler(userService user.UserService, validator *validator.Validate, logger *zap.Logger) UserHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userHandler{
		userService: userService,
		validator:   validator,
		logger:      logger,
	}
}

func (h *userHandler) Me(c *fiber.Ctx) error {
	telegramID, _ := middleware.TelegramID(c)

	res, err := h.userService.GetProfile(c.UserContext(), telegramID)
	if err != nil {
		return failed(c, h.logger, domain.MessageFailedGetProfile, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetProfile)
}

func (h *userHandler) SaveBiometrics(c *fiber.Ctx) error {
	telegramID, _ := middleware.TelegramID(c)

	req := new(domain.Biometrics)
	if err := c.BodyParser(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if err := h.validator.Struct(req); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedSaveBiometric, err)
	}

	if err := h.userService.SaveBiometrics(c.UserContext(), telegramID, *req); err != nil {
		return failed(c, h.logger, domain.MessageFailedSaveBiometric, err)
	}
	res, err := h.userService.GetProfile(c.UserContext(), telegramID)
	if err != nil {
		return failed(c, h.logger, domain.MessageFailedGetProfile, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessGetProfile)
}

func (h *userHandler) Calculate(c *fiber.Ctx) error {
	telegramID, _ := middleware.TelegramID(c)

	res, err := h.userService.CalculateTargets(c.UserContext(), telegramID)
	if err != nil {
		return failed(c, h.logger, domain.MessageFailedCalculate, err)
	}
	return presenters.SuccessResponse(c, res, fiber.StatusOK, domain.MessageSuccessCalculate)
}
