// main.go
package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"coffee-shop-api/cmd"
	"coffee-shop-api/internal/data/repository"
	"coffee-shop-api/internal/usecase"
	"coffee-shop-api/internal/wire"
	"coffee-shop-api/internal/worker"
	"coffee-shop-api/pkg/cache"
	"coffee-shop-api/pkg/database"
	"coffee-shop-api/pkg/notifier"
	"coffee-shop-api/pkg/token"
	"coffee-shop-api/pkg/utils"

	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	config, err := utils.LoadConfig(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := utils.InitLogger(config.App)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	logger.Info("Database connected successfully")

	var listingCache cache.Cache = cache.Nop{}
	if config.Redis.Addr != "" {
		client, err := cache.InitRedis(config.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer client.Close()
		listingCache = cache.NewRedisCache(client)
		logger.Info("Redis connected", zap.String("addr", config.Redis.Addr))
	} else {
		logger.Warn("REDIS_ADDR not set, user listing is not cached")
	}

	var mailer notifier.Mailer = notifier.NewLogMailer(logger)
	if config.Email.Host != "" {
		mailer = notifier.NewSMTPMailer(config.Email)
	} else {
		logger.Warn("SMTP_HOST not set, verification emails are written to the log")
	}

	mailQueue := notifier.NewQueue(mailer, notifier.QueueConfig{
		Workers:    config.Email.Workers,
		Size:       config.Email.QueueSize,
		MaxRetries: config.Email.MaxRetries,
	}, logger)
	mailQueue.Start()

	tokens := token.NewManager(config.JWT.Secret, config.JWT.AccessTTL, config.JWT.RefreshTTL)

	repos := repository.NewRepository(db, listingCache, logger)
	services := usecase.NewService(repos, listingCache, mailQueue, tokens, config, logger)

	sweeper, err := worker.NewSweepScheduler(services.User, config.Sweep.Schedule, time.Minute, logger)
	if err != nil {
		logger.Fatal("Failed to schedule sweep", zap.Error(err))
	}
	sweeper.Start()

	app := wire.Wiring(repos, services, tokens, config, logger)

	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))
	if err := cmd.APIServer(ctx, app.Router, config.App.Port, logger); err != nil {
		logger.Error("Server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := sweeper.Stop(shutdownCtx); err != nil {
		logger.Warn("Sweep still running at shutdown", zap.Error(err))
	}
	if err := mailQueue.Close(shutdownCtx); err != nil {
		logger.Warn("Mail queue not drained", zap.Error(err))
	}

	logger.Info("Application stopped")
}
