package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gofiber/fiber/v2"

	"nutriplan/domain"
	"nutriplan/internal/api/handlers"
	"nutriplan/internal/api/presenters"
	"nutriplan/internal/api/routes"
	"nutriplan/internal/middleware"
	"nutriplan/pkg/jwt"
)

const (
	testSecret     = "test-secret"
	testTelegramID = int64(4242)
)

type fakeUsers struct {
	profile  domain.ProfileResponse
	err      error
	saved    *domain.Biometrics
	targets  domain.Targets
	lastUser int64
}

func (f *fakeUsers) GetProfile(_ context.Context, telegramID int64) (domain.ProfileResponse, error) {
	f.lastUser = telegramID
	return f.profile, f.err
}

func (f *fakeUsers) SaveBiometrics(_ context.Context, _ int64, b domain.Biometrics) error {
	f.saved = &b
	return f.err
}

func (f *fakeUsers) CalculateTargets(context.Context, int64) (domain.Targets, error) {
	return f.targets, f.err
}

func (f *fakeUsers) IssueToken(context.Context, int64) (domain.TokenResponse, error) {
	return domain.TokenResponse{}, nil
}

type fakePlans struct {
	result    domain.WeeklyPlanResult
	err       error
	dishes    []domain.DishResponse
	items     []domain.ShoppingItem
	requested uint
}

func (f *fakePlans) GenerateWeeklyPlan(context.Context, int64) (domain.WeeklyPlanResult, error) {
	return f.result, f.err
}

func (f *fakePlans) TodayDishes(context.Context, int64) ([]domain.DishResponse, error) {
	return f.dishes, f.err
}

func (f *fakePlans) WeekDishes(context.Context, int64) ([]domain.DishResponse, error) {
	return f.dishes, f.err
}

func (f *fakePlans) ShoppingList(context.Context, int64) ([]domain.ShoppingItem, error) {
	return f.items, f.err
}

func (f *fakePlans) DishDetail(_ context.Context, _ int64, dishID uint) (domain.DishResponse, error) {
	f.requested = dishID
	if f.err != nil {
		return domain.DishResponse{}, f.err
	}
	return domain.DishResponse{ID: dishID, Name: "Омлет"}, nil
}

type fakeProducts struct{}

func (fakeProducts) ListProducts(context.Context) ([]domain.ProductResponse, error) {
	return []domain.ProductResponse{{ID: 1, Name: "Рис", Region: "ru"}}, nil
}

type harness struct {
	app     *fiber.App
	users   *fakeUsers
	plans   *fakePlans
	updates []tgbotapi.Update
	token   string
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{users: &fakeUsers{}, plans: &fakePlans{}}
	jwtService := jwt.NewJWTService(testSecret)
	token, _, err := jwtService.GenerateToken(strconv.FormatInt(testTelegramID, 10))
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	h.token = token

	app := fiber.New()
	cfg := routes.Config{
		App:            app,
		UserHandler:    handlers.NewUserHandler(h.users, validator.New(), nil),
		PlanHandler:    handlers.NewPlanHandler(h.plans, nil),
		ProductHandler: handlers.NewProductHandler(fakeProducts{}, nil),
		WebhookHandler: handlers.NewWebhookHandler("hook-secret", func(_ context.Context, u tgbotapi.Update) {
			h.updates = append(h.updates, u)
		}),
		Middleware: middleware.NewMiddleware(),
		JWTService: jwtService,
	}
	cfg.Setup()
	h.app = app
	return h
}

func (h *harness) do(t *testing.T, method, path, body string, auth bool) (int, presenters.Response) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+h.token)
	}

	resp, err := h.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var out presenters.Response
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestPing(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(t, http.MethodGet, "/api/ping", "", false)
	if status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	h := newHarness(t)

	status, res := h.do(t, http.MethodGet, "/api/v1/profile", "", false)
	if status != http.StatusUnauthorized || res.Status {
		t.Fatalf("expected 401, got %d %+v", status, res)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/plan/week", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err := h.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", resp.StatusCode)
	}
}

func TestProfileUsesTokenIdentity(t *testing.T) {
	h := newHarness(t)
	h.users.profile = domain.ProfileResponse{TelegramID: testTelegramID}

	status, res := h.do(t, http.MethodGet, "/api/v1/profile", "", true)
	if status != http.StatusOK || !res.Status {
		t.Fatalf("expected 200, got %d %+v", status, res)
	}
	if h.users.lastUser != testTelegramID {
		t.Fatalf("service called with %d", h.users.lastUser)
	}
}

func TestProfileNotFound(t *testing.T) {
	h := newHarness(t)
	h.users.err = domain.ErrProfileNotFound

	status, _ := h.do(t, http.MethodGet, "/api/v1/profile", "", true)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestSaveBiometricsValidatesBody(t *testing.T) {
	h := newHarness(t)

	status, _ := h.do(t, http.MethodPut, "/api/v1/profile", `{"age":15,"gender":"male","weight":80,"height":180,"activity_level":"medium","goal":"maintain"}`, true)
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if h.users.saved != nil {
		t.Fatalf("invalid biometrics must not be saved")
	}

	status, _ = h.do(t, http.MethodPut, "/api/v1/profile", `{"age":30,"gender":"male","weight":80,"height":180,"activity_level":"medium","goal":"maintain"}`, true)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if h.users.saved == nil || h.users.saved.Age != 30 {
		t.Fatalf("biometrics not saved: %+v", h.users.saved)
	}
}

func TestCalculateIncompleteProfile(t *testing.T) {
	h := newHarness(t)
	h.users.err = domain.ErrProfileIncomplete

	status, _ := h.do(t, http.MethodPost, "/api/v1/profile/calculate", "", true)
	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
}

func TestDishDetailRejectsBadID(t *testing.T) {
	h := newHarness(t)

	for _, id := range []string{"abc", "0", "-3"} {
		status, _ := h.do(t, http.MethodGet, "/api/v1/dishes/"+id, "", true)
		if status != http.StatusBadRequest {
			t.Fatalf("id %q: expected 400, got %d", id, status)
		}
	}

	status, _ := h.do(t, http.MethodGet, "/api/v1/dishes/17", "", true)
	if status != http.StatusOK || h.plans.requested != 17 {
		t.Fatalf("expected dish 17, got %d %d", status, h.plans.requested)
	}

	h.plans.err = domain.ErrDishNotFound
	status, _ = h.do(t, http.MethodGet, "/api/v1/dishes/18", "", true)
	if status != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}

func TestGenerateStatusMapping(t *testing.T) {
	cases := []struct {
		name   string
		result domain.WeeklyPlanResult
		err    error
		want   int
	}{
		{"limit", domain.WeeklyPlanResult{}, domain.ErrWeeklyLimitReached, http.StatusTooManyRequests},
		{"targets", domain.WeeklyPlanResult{}, domain.ErrTargetsNotSet, http.StatusConflict},
		{"in progress", domain.WeeklyPlanResult{}, domain.ErrGenerationInProgress, http.StatusConflict},
		{"generated", domain.WeeklyPlanResult{Outcome: domain.OutcomeGenerated}, nil, http.StatusCreated},
		{"failed", domain.WeeklyPlanResult{Outcome: domain.OutcomeGenerationFailed}, nil, http.StatusBadGateway},
		{"not saved", domain.WeeklyPlanResult{Outcome: domain.OutcomeNotSaved}, nil, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			h.plans.result = tc.result
			h.plans.err = tc.err

			status, _ := h.do(t, http.MethodPost, "/api/v1/plan/generate", "", true)
			if status != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, status)
			}
		})
	}
}

func TestShoppingListAndProducts(t *testing.T) {
	h := newHarness(t)
	h.plans.items = []domain.ShoppingItem{{Product: "Рис", Grams: 200}}

	status, res := h.do(t, http.MethodGet, "/api/v1/plan/shopping-list", "", true)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	data, _ := json.Marshal(res.Data)
	if !strings.Contains(string(data), `"grams":200`) {
		t.Fatalf("unexpected body %s", data)
	}

	status, _ = h.do(t, http.MethodGet, "/api/v1/products", "", true)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
}

func TestTelegramWebhookChecksSecret(t *testing.T) {
	h := newHarness(t)
	body := `{"update_id":1,"message":{"message_id":5,"text":"/start","chat":{"id":7,"type":"private"},"from":{"id":7,"is_bot":false,"first_name":"A"}}}`

	req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := h.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized || len(h.updates) != 0 {
		t.Fatalf("expected rejected update, got %d with %d updates", resp.StatusCode, len(h.updates))
	}

	req = httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Telegram-Bot-Api-Secret-Token", "hook-secret")
	resp, err = h.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if len(h.updates) != 1 || h.updates[0].Message == nil || h.updates[0].Message.Text != "/start" {
		t.Fatalf("update not dispatched: %+v", h.updates)
	}
}

func TestStorageErrorsStayServerSide(t *testing.T) {
	h := newHarness(t)
	h.plans.err = fmt.Errorf("list dishes: %w", errors.New("failed to connect to host=10.0.0.5 user=nutriplan"))

	for _, path := range []string{"/api/v1/plan/week", "/api/v1/plan/today", "/api/v1/plan/shopping-list", "/api/v1/dishes/3"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+h.token)
		resp, err := h.app.Test(req, -1)
		if err != nil {
			t.Fatalf("%s: %v", path, err)
		}
		raw, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusInternalServerError {
			t.Fatalf("%s: expected 500, got %d", path, resp.StatusCode)
		}
		if strings.Contains(string(raw), "10.0.0.5") || strings.Contains(string(raw), "list dishes") {
			t.Fatalf("%s: storage error leaked: %s", path, raw)
		}
		var out presenters.Response
		if err := json.Unmarshal(raw, &out); err != nil || out.Error != domain.ErrInternal.Error() {
			t.Fatalf("%s: expected generic error, got %s", path, raw)
		}
	}
}
