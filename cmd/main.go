package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"nutriplan/cmd/config"
	migration "nutriplan/cmd/database/migrate"
	"nutriplan/internal/api/handlers"
	"nutriplan/internal/bot"
	"nutriplan/internal/utils"
	"nutriplan/internal/utils/mailing"
)

func main() {
	utils.LoadConfig()

	logger, err := utils.NewLogger(utils.GetConfig("LOG_LEVEL"))
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, os.Args[1:]); err != nil {
		logger.Fatal("nutriplan stopped", zap.Error(err))
	}
}

func run(ctx context.Context, logger *zap.Logger, args []string) error {
	db, err := config.ConnectDB()
	if err != nil {
		return err
	}

	if len(args) > 0 {
		switch args[0] {
		case "migrate":
			return migration.Migrate(db, logger)
		case "seed":
			return migration.Seed(ctx, db, logger)
		default:
			return errors.New("unknown command " + args[0] + ", expected migrate or seed")
		}
	}

	rdb, err := config.ConnectRedis(ctx)
	if err != nil {
		return err
	}
	defer rdb.Close()

	services, err := config.NewServices(ctx, db, rdb, logger)
	if err != nil {
		return err
	}

	tgBot, err := bot.NewBot(utils.GetConfig("TELEGRAM_BOT_TOKEN"), logger.Named("bot"))
	if err != nil {
		return err
	}
	dispatcher := bot.NewDispatcher(
		tgBot,
		services.Users,
		services.Dialogue,
		services.Plans,
		mailing.NewMailer(mailing.LoadMailConfig()),
		bot.NewRedisFloodGuard(rdb, time.Second),
		services.Validator,
		logger.Named("dispatcher"),
		bot.Config{
			WeeklyLimit: utils.GetConfigInt("WEEKLY_PLAN_LIMIT"),
			Workers:     int64(utils.GetConfigInt("PLAN_WORKERS")),
		},
	)
	botHandlers := dispatcher.Handlers()

	var webhook handlers.UpdateFunc
	if url := utils.GetConfig("WEBHOOK_URL"); url != "" {
		if err := tgBot.SetWebhook(url, utils.GetConfig("TELEGRAM_WEBHOOK_SECRET")); err != nil {
			return err
		}
		webhook = func(ctx context.Context, update tgbotapi.Update) {
			tgBot.Dispatch(ctx, update, botHandlers)
		}
		logger.Info("telegram webhook mode", zap.String("url", url))
	} else {
		go func() {
			if err := tgBot.Listen(ctx, botHandlers); err != nil {
				logger.Error("telegram polling stopped", zap.Error(err))
			}
		}()
		logger.Info("telegram long polling mode")
	}

	app, err := config.NewApp(services, webhook)
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Listen(":" + utils.GetConfig("PORT"))
	}()
	logger.Info("http server started", zap.String("port", utils.GetConfig("PORT")))

	select {
	case <-ctx.Done():
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	dispatcher.Shutdown(shutdownCtx)
	return nil
}
