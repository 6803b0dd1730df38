package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/storefront/internal/config"
	"github.com/example/storefront/internal/database"
	"github.com/example/storefront/internal/handlers"
	"github.com/example/storefront/internal/logging"
	"github.com/example/storefront/internal/routes"
	"github.com/example/storefront/internal/services"
)

var version = "dev"

func main() {
	cfg := config.Load()

	appLogger := logging.Setup("storefront-auth", version, cfg.LogFormat, os.Stderr)
	slog.SetDefault(appLogger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	users, err := openUserStore(cfg.DatabaseURL)
	if err != nil {
		logging.LogError(appLogger, "database setup failed", err)
		os.Exit(1)
	}

	avatars, err := services.NewS3AvatarStore(ctx, cfg)
	if err != nil {
		logging.LogError(appLogger, "image store setup failed", err)
		os.Exit(1)
	}

	cache, err := services.NewProfileCache(ctx, cfg.RedisURL, cfg.ProfileCacheTTL)
	if err != nil {
		logging.LogError(appLogger, "profile cache setup failed", err)
		os.Exit(1)
	}
	defer cache.Close()

	mailer := services.NewMailer(cfg, appLogger)
	auth := services.NewAuthService(users, mailer, avatars, cache, cfg, appLogger)

	app := fiber.New(fiber.Config{
		AppName:      "Storefront Auth",
		BodyLimit:    services.MaxAvatarSize + 1<<20,
		ErrorHandler: handlers.ErrorHandler(appLogger),
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.FrontendURL,
		AllowCredentials: true,
	}))

	routes.Register(app, cfg, auth)

	go func() {
		<-ctx.Done()
		appLogger.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logging.LogError(appLogger, "shutdown failed", err)
		}
	}()

	appLogger.Info("starting server", "port", cfg.AppPort, "image_store", cfg.S3Bucket != "", "cache", cache.Enabled())
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		log.Fatalf("fiber.Listen error: %v", err)
	}
}

func openUserStore(dsn string) (services.UserStore, error) {
	if dsn == "memory" {
		slog.Warn("using in-memory user store, data is lost on restart")
		return database.NewMemoryUserStore(), nil
	}

	db, err := database.Connect(dsn)
	if err != nil {
		return nil, err
	}
	return database.NewUserStore(db), nil
}
