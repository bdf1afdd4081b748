package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"nutriplan/domain"
	"nutriplan/internal/api/presenters"
)

// failed writes the error response for a service error. Errors without a
// mapped status are logged and replaced by ErrInternal.
func failed(c *fiber.Ctx, log *zap.Logger, message string, err error) error {
	status := statusFor(err)
	if status == fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		err = domain.ErrInternal
	}
	return presenters.ErrorResponse(c, status, message, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound), errors.Is(err, domain.ErrDishNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrProfileIncomplete), errors.Is(err, domain.ErrTargetsNotSet),
		errors.Is(err, domain.ErrGenerationInProgress):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrWeeklyLimitReached):
		return fiber.StatusTooManyRequests
	case errors.Is(err, domain.ErrInvalidDishID), errors.Is(err, domain.ErrInvalidBiometrics):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrNoProducts):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}
