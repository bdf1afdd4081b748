package plan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"nutriplan/domain"
	"nutriplan/entities"
	"nutriplan/internal/utils"
	"nutriplan/pkg/product"
	"nutriplan/pkg/user"
)

const horizonDays = 7

type (
	// Archive stores raw generator replies. Failures are logged and ignored.
	Archive interface {
		Put(ctx context.Context, key string, body []byte) error
	}

	Config struct {
		WeeklyLimit    int
		MaxAttempts    int
		AttemptTimeout time.Duration
		Location       *time.Location
	}

	PlanService interface {
		GenerateWeeklyPlan(ctx context.Context, telegramID int64) (domain.WeeklyPlanResult, error)
		TodayDishes(ctx context.Context, telegramID int64) ([]domain.DishResponse, error)
		WeekDishes(ctx context.Context, telegramID int64) ([]domain.DishResponse, error)
		ShoppingList(ctx context.Context, telegramID int64) ([]domain.ShoppingItem, error)
		DishDetail(ctx context.Context, telegramID int64, dishID uint) (domain.DishResponse, error)
	}

	planService struct {
		planRepository    PlanRepository
		userRepository    user.UserRepository
		productRepository product.ProductRepository
		generator         PlanGenerator
		archive           Archive
		validator         *validator.Validate
		logger            *zap.Logger
		cfg               Config
		now               func() time.Time
		inFlight          sync.Map
	}
)

func NewPlanService(
	planRepository PlanRepository,
	userRepository user.UserRepository,
	productRepository product.ProductRepository,
	generator PlanGenerator,
	archive Archive,
	validator *validator.Validate,
	logger *zap.Logger,
	cfg Config,
) PlanService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.WeeklyLimit <= 0 {
		cfg.WeeklyLimit = 5
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = 60 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &planService{
		planRepository:    planRepository,
		userRepository:    userRepository,
		productRepository: productRepository,
		generator:         generator,
		archive:           archive,
		validator:         validator,
		logger:            logger,
		cfg:               cfg,
		now:               time.Now,
	}
}

func (s *planService) today() time.Time {
	return utils.Day(s.now(), s.cfg.Location)
}

// GenerateWeeklyPlan checks the profile, targets and weekly quota, then asks
// the generator for a seven-day menu and stores it. The quota is consumed
// before the generator is called and is not refunded on failure.
func (s *planService) GenerateWeeklyPlan(ctx context.Context, telegramID int64) (domain.WeeklyPlanResult, error) {
	if _, busy := s.inFlight.LoadOrStore(telegramID, struct{}{}); busy {
		return domain.WeeklyPlanResult{}, domain.ErrGenerationInProgress
	}
	defer s.inFlight.Delete(telegramID)

	u, err := s.userRepository.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return domain.WeeklyPlanResult{}, err
	}
	targets, ok := user.TargetsOf(u)
	if !ok {
		return domain.WeeklyPlanResult{}, domain.ErrTargetsNotSet
	}

	products, err := s.productRepository.GetAll(ctx)
	if err != nil {
		return domain.WeeklyPlanResult{}, err
	}
	if len(products) == 0 {
		return domain.WeeklyPlanResult{}, domain.ErrNoProducts
	}
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}

	today := s.today()
	u, err = s.userRepository.ConsumeWeeklyRequest(ctx, telegramID, today, s.cfg.WeeklyLimit)
	if err != nil {
		if errors.Is(err, domain.ErrWeeklyLimitReached) {
			s.logger.Info("weekly plan limit reached", zap.Int64("telegram_id", telegramID))
		}
		return domain.WeeklyPlanResult{}, err
	}

	runID := uuid.NewString()
	log := s.logger.With(zap.Int64("telegram_id", telegramID), zap.String("run_id", runID))
	log.Info("weekly plan requested", zap.Int("week_request_count", u.WeekRequestCount))

	result := domain.WeeklyPlanResult{RunID: runID}

	days, raw, err := s.requestPlan(ctx, log, BuildMessages(targets, domain.Goal(*u.Goal), names))
	if err != nil {
		return domain.WeeklyPlanResult{}, err
	}
	if days == nil {
		log.Warn("weekly plan generation failed", zap.Int("attempts", s.cfg.MaxAttempts))
		return s.finish(result, domain.OutcomeGenerationFailed, nil), nil
	}
	s.archiveReply(ctx, log, telegramID, today, runID, raw)

	from, to := today, today.AddDate(0, 0, horizonDays-1)
	if err := s.planRepository.ReplaceHorizon(ctx, u.ID, from, to, toDishes(u.ID, today, days)); err != nil {
		log.Error("failed to store weekly plan", zap.Error(err))
		return s.finish(result, domain.OutcomeNotSaved, nil), nil
	}

	stored, err := s.planRepository.GetDishesInRange(ctx, u.ID, from, to)
	if err != nil || len(stored) == 0 {
		log.Error("weekly plan read-back empty", zap.Error(err), zap.Int("generated", len(days)))
		return s.finish(result, domain.OutcomeNotSaved, nil), nil
	}

	log.Info("weekly plan stored", zap.Int("dishes", len(stored)))
	return s.finish(result, domain.OutcomeGenerated, toDishResponses(stored)), nil
}

func (s *planService) finish(res domain.WeeklyPlanResult, outcome domain.PlanOutcome, dishes []domain.DishResponse) domain.WeeklyPlanResult {
	res.Outcome = outcome
	res.Status = outcome.String()
	if dishes == nil {
		dishes = []domain.DishResponse{}
	}
	res.Dishes = dishes
	return res
}

// requestPlan runs the bounded retry loop. It returns nil days when every
// attempt failed; an error only when the caller's context is done.
func (s *planService) requestPlan(ctx context.Context, log *zap.Logger, messages []Message) ([]domain.GeneratedDay, string, error) {
	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, s.cfg.AttemptTimeout)
		raw, err := s.generator.Request(attemptCtx, messages)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return nil, "", ctx.Err()
			}
			log.Warn("plan generator request failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		days, err := ParsePlan(raw, s.validator)
		if err != nil {
			log.Warn("plan generator reply rejected", zap.Int("attempt", attempt), zap.Error(err))
			messages = withCorrection(messages, raw)
			continue
		}
		log.Info("plan generator reply accepted", zap.Int("attempt", attempt), zap.Int("entries", len(days)))
		return days, raw, nil
	}
	return nil, "", nil
}

func (s *planService) archiveReply(ctx context.Context, log *zap.Logger, telegramID int64, today time.Time, runID, raw string) {
	if s.archive == nil {
		return
	}
	key := fmt.Sprintf("plans/%d/%s/%s.json", telegramID, today.Format(dateLayout), runID)
	if err := s.archive.Put(ctx, key, []byte(raw)); err != nil {
		log.Warn("failed to archive plan reply", zap.String("key", key), zap.Error(err))
	}
}

func toDishes(userID uint, today time.Time, days []domain.GeneratedDay) []entities.Dish {
	dishes := make([]entities.Dish, 0, len(days))
	for _, d := range days {
		ingredients := make([]entities.DishIngredient, 0, len(d.Ingredients))
		for _, ing := range d.Ingredients {
			ingredients = append(ingredients, entities.DishIngredient{Product: ing.Product, Grams: *ing.Grams})
		}
		dishes = append(dishes, entities.Dish{
			UserID:      userID,
			Date:        today.AddDate(0, 0, *d.Day-1),
			Name:        d.DishName,
			Ingredients: ingredients,
			Recipe:      d.Recipe,
		})
	}
	return dishes
}

func toDishResponse(d entities.Dish) domain.DishResponse {
	ingredients := make([]domain.IngredientResponse, 0, len(d.Ingredients))
	for _, ing := range d.Ingredients {
		ingredients = append(ingredients, domain.IngredientResponse{Product: ing.Product, Grams: ing.Grams})
	}
	return domain.DishResponse{
		ID:          d.ID,
		Date:        d.Date,
		Name:        d.Name,
		Ingredients: ingredients,
		Recipe:      d.Recipe,
	}
}

func toDishResponses(dishes []entities.Dish) []domain.DishResponse {
	res := make([]domain.DishResponse, 0, len(dishes))
	for _, d := range dishes {
		res = append(res, toDishResponse(d))
	}
	return res
}

func (s *planService) dishesFor(ctx context.Context, telegramID int64, days int) ([]domain.DishResponse, error) {
	u, err := s.userRepository.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	today := s.today()
	dishes, err := s.planRepository.GetDishesInRange(ctx, u.ID, today, today.AddDate(0, 0, days-1))
	if err != nil {
		return nil, err
	}
	return toDishResponses(dishes), nil
}

func (s *planService) TodayDishes(ctx context.Context, telegramID int64) ([]domain.DishResponse, error) {
	return s.dishesFor(ctx, telegramID, 1)
}

func (s *planService) WeekDishes(ctx context.Context, telegramID int64) ([]domain.DishResponse, error) {
	return s.dishesFor(ctx, telegramID, horizonDays)
}

// ShoppingList sums grams per product over the week, sorted by product name.
func (s *planService) ShoppingList(ctx context.Context, telegramID int64) ([]domain.ShoppingItem, error) {
	dishes, err := s.WeekDishes(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	return AggregateShoppingList(dishes), nil
}

func AggregateShoppingList(dishes []domain.DishResponse) []domain.ShoppingItem {
	totals := map[string]float64{}
	for _, d := range dishes {
		for _, ing := range d.Ingredients {
			totals[ing.Product] += ing.Grams
		}
	}
	items := make([]domain.ShoppingItem, 0, len(totals))
	for name, grams := range totals {
		items = append(items, domain.ShoppingItem{Product: name, Grams: grams})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Product < items[j].Product })
	return items
}

func (s *planService) DishDetail(ctx context.Context, telegramID int64, dishID uint) (domain.DishResponse, error) {
	u, err := s.userRepository.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return domain.DishResponse{}, err
	}
	dish, err := s.planRepository.GetDishByID(ctx, dishID)
	if err != nil {
		return domain.DishResponse{}, err
	}
	if dish.UserID != u.ID {
		return domain.DishResponse{}, domain.ErrDishNotFound
	}
	return toDishResponse(*dish), nil
}
