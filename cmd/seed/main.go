package main

import (
	"context"
	"log"

	"veggi-storefront/internal/backend"
	"veggi-storefront/internal/config"
	"veggi-storefront/internal/logging"
	"veggi-storefront/internal/seed"

	"go.uber.org/zap"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	logger = logger.Named("seed")

	ctx := context.Background()
	client := backend.New(backend.Options{
		APIBase: cfg.APIBaseURL,
		Timeout: cfg.BackendTimeout,
		Logger:  logger,
	})

	token, err := client.Login(ctx, backend.Credentials{Email: cfg.AdminEmail, Password: cfg.AdminPassword})
	if err != nil {
		logger.Fatal("admin login", zap.Error(err))
	}

	n, err := seed.Apply(ctx, client, token, logger)
	if err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied", zap.Int("created", n))
}
