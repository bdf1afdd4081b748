package config

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"nutriplan/pkg/jwt"
)

func TestWebhookIsNotIPRateLimited(t *testing.T) {
	t.Setenv("LOG_FILE", filepath.Join(t.TempDir(), "app.log"))
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "")

	var delivered atomic.Int32
	svc := &Services{
		JWT:       jwt.NewJWTService("secret"),
		Validator: validator.New(),
		Logger:    zap.NewNop(),
	}
	app, err := NewApp(svc, func(context.Context, tgbotapi.Update) {
		delivered.Add(1)
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}

	for i := 0; i < 25; i++ {
		req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(`{"update_id":1}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("webhook request %d: %v", i, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("webhook request %d: status %d", i, resp.StatusCode)
		}
	}
	if delivered.Load() != 25 {
		t.Fatalf("delivered %d updates, want 25", delivered.Load())
	}

	limited := false
	for i := 0; i < 25; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ping", nil), -1)
		if err != nil {
			t.Fatalf("ping %d: %v", i, err)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			limited = true
			break
		}
	}
	if !limited {
		t.Fatalf("expected the /api limiter to reject a burst of 25 requests")
	}
}
