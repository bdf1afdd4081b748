package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"

	"nutriplan/domain"
	"nutriplan/internal/api/presenters"
)

const telegramSecretHeader = "X-Telegram-Bot-Api-Secret-Token"

type (
	// UpdateFunc handles one Telegram update received over the webhook.
	UpdateFunc func(ctx context.Context, update tgbotapi.Update)

	WebhookHandler interface {
		TelegramWebhook(c *fiber.Ctx) error
	}

	webhookHandler struct {
		secret   string
		dispatch UpdateFunc
	}
)

func NewWebhookHandler(secret string, dispatch UpdateFunc) WebhookHandler {
	return &webhookHandler{secret: secret, dispatch: dispatch}
}

func (h *webhookHandler) TelegramWebhook(c *fiber.Ctx) error {
	if h.secret != "" {
		got := c.Get(telegramSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.secret)) != 1 {
			return presenters.ErrorResponse(c, fiber.StatusUnauthorized, domain.MessageUserNotAllowed, domain.ErrWebhookSecret)
		}
	}

	var update tgbotapi.Update
	if err := json.Unmarshal(c.Body(), &update); err != nil {
		return presenters.ErrorResponse(c, fiber.StatusBadRequest, domain.MessageFailedBodyRequest, err)
	}
	if h.dispatch != nil {
		h.dispatch(c.UserContext(), update)
	}
	return c.SendStatus(fiber.StatusOK)
}
