package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lab-grader/internal/config"
	"github.com/noah-isme/gema-lab-grader/internal/database"
	"github.com/noah-isme/gema-lab-grader/internal/events"
	"github.com/noah-isme/gema-lab-grader/internal/grading"
	"github.com/noah-isme/gema-lab-grader/internal/handler"
	"github.com/noah-isme/gema-lab-grader/internal/middleware"
	"github.com/noah-isme/gema-lab-grader/internal/repository"
	"github.com/noah-isme/gema-lab-grader/internal/router"
	"github.com/noah-isme/gema-lab-grader/internal/service"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "weblab-api").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}
	if err := cfg.ValidateServer(); err != nil {
		logger.Fatal().Err(err).Msg("invalid server configuration")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, submission cache disabled")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	var publisher events.Publisher
	natsConn, err := events.Connect(cfg.NATSURL, cfg.AppName)
	switch {
	case err != nil:
		logger.Warn().Err(err).Msg("nats unavailable, grade events disabled")
	case natsConn != nil:
		defer natsConn.Drain()
		publisher = events.NewNATSPublisher(natsConn, cfg.NATSSubject, logger)
	}

	lab := grading.MoreCSS()
	if !cfg.Deadline.IsZero() {
		lab.Deadline.At = cfg.Deadline
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	gradingService := service.NewGradingService(
		[]grading.Lab{lab},
		repository.NewLabSubmissionRepository(db),
		validate,
		service.GradingServiceOptions{
			Redis:     redisClient,
			CacheTTL:  cfg.ReportCacheTTL,
			Publisher: publisher,
		},
		logger,
	)
	gradingHandler := handler.NewGradingHandler(gradingService, handler.GradingHandlerOptions{
		SubmitLimit:  10,
		SubmitWindow: time.Minute,
	}, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    12 * 1024 * 1024,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		GradingHandler: gradingHandler,
		JWTMiddleware:  middleware.JWTProtected(cfg.JWTSecret),
		ExposeMetrics:  true,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
