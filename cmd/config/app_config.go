package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"nutriplan/internal/api/handlers"
	"nutriplan/internal/api/routes"
	"nutriplan/internal/middleware"
	"nutriplan/internal/utils"
	"nutriplan/internal/utils/storage"
	"nutriplan/pkg/jwt"
	"nutriplan/pkg/onboarding"
	"nutriplan/pkg/plan"
	"nutriplan/pkg/product"
	"nutriplan/pkg/user"
)

// Services holds everything shared by the HTTP API and the chat bot.
type Services struct {
	Users     user.UserService
	Plans     plan.PlanService
	Products  product.ProductService
	Dialogue  onboarding.Dialogue
	JWT       jwt.JWTService
	Validator *validator.Validate
	Logger    *zap.Logger
}

func NewServices(ctx context.Context, db *gorm.DB, rdb *goredis.Client, log *zap.Logger) (*Services, error) {
	utils.InitValidator()
	validate := utils.Validate

	// utils
	var archive plan.Archive
	s3, err := storage.NewAwsS3(ctx)
	if err != nil {
		return nil, err
	}
	if s3 != nil {
		archive = s3
	}

	// Repository
	userRepository := user.NewUserRepository(db)
	productRepository := product.NewProductRepository(db)
	planRepository := plan.NewPlanRepository(db)

	// Service
	jwtService := jwt.NewJWTService(utils.GetConfig("JWT_SECRET"))
	userService := user.NewUserService(userRepository, jwtService, validate, log.Named("user"))
	productService := product.NewProductService(productRepository)
	generator := plan.NewGeminiGenerator(
		utils.GetConfig("GEMINI_API_KEY"),
		utils.GetConfig("GEMINI_MODEL"),
		utils.GetConfigDuration("GEMINI_TIMEOUT"),
	)
	planService := plan.NewPlanService(
		planRepository,
		userRepository,
		productRepository,
		generator,
		archive,
		validate,
		log.Named("plan"),
		plan.Config{
			WeeklyLimit:    utils.GetConfigInt("WEEKLY_PLAN_LIMIT"),
			MaxAttempts:    utils.GetConfigInt("PLAN_MAX_ATTEMPTS"),
			AttemptTimeout: utils.GetConfigDuration("GEMINI_TIMEOUT"),
			Location:       utils.Location(),
		},
	)
	sessions := onboarding.NewRedisSessionStore(rdb, utils.GetConfigDuration("SESSION_TTL"))
	dialogue := onboarding.NewDialogue(sessions, userService, validate, log.Named("onboarding"))

	return &Services{
		Users:     userService,
		Plans:     planService,
		Products:  productService,
		Dialogue:  dialogue,
		JWT:       jwtService,
		Validator: validate,
		Logger:    log,
	}, nil
}

// NewApp builds the HTTP API. webhook may be nil when the bot long-polls.
func NewApp(svc *Services, webhook handlers.UpdateFunc) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	middlewares := middleware.NewMiddleware()

	// setting up logging and limiter
	logFile := utils.GetConfig("LOG_FILE")
	if err := os.MkdirAll(filepath.Dir(logFile), os.ModePerm); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(
		logFile,
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, err
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   utils.GetConfig("TIMEZONE"),
		Output:     file,
	}))

	// The limiter keys on client IP. Webhook updates all come from Telegram
	// and are limited per identity by the bot's flood guard instead.
	app.Use("/api", limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// Handler
	apiLog := svc.Logger
	if apiLog == nil {
		apiLog = zap.NewNop()
	}
	apiLog = apiLog.Named("api")
	userHandler := handlers.NewUserHandler(svc.Users, svc.Validator, apiLog)
	planHandler := handlers.NewPlanHandler(svc.Plans, apiLog)
	productHandler := handlers.NewProductHandler(svc.Products, apiLog)
	var webhookHandler handlers.WebhookHandler
	if webhook != nil {
		webhookHandler = handlers.NewWebhookHandler(utils.GetConfig("TELEGRAM_WEBHOOK_SECRET"), webhook)
	}

	// routes
	routesConfig := routes.Config{
		App:            app,
		UserHandler:    userHandler,
		PlanHandler:    planHandler,
		ProductHandler: productHandler,
		WebhookHandler: webhookHandler,
		Middleware:     middlewares,
		JWTService:     svc.JWT,
	}
	routesConfig.Setup()
	return app, nil
}
