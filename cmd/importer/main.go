package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"veggi-storefront/internal/backend"
	"veggi-storefront/internal/config"
	"veggi-storefront/internal/importer"
	"veggi-storefront/internal/logging"

	"go.uber.org/zap"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to product catalog CSV")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	logger = logger.Named("importer")

	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		logger.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD must be set")
	}

	ctx := context.Background()
	client := backend.New(backend.Options{
		APIBase:     cfg.APIBaseURL,
		PaymentBase: cfg.PaymentBaseURL,
		Timeout:     cfg.BackendTimeout,
		Logger:      logger,
	})

	token, err := client.Login(ctx, backend.Credentials{Email: cfg.AdminEmail, Password: cfg.AdminPassword})
	if err != nil {
		logger.Fatal("admin login", zap.Error(err))
	}

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, client, token, logger)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err), zap.Int("imported", count))
	}

	logger.Info("import finished",
		zap.Int("products", count),
		zap.Duration("took", time.Since(start).Truncate(time.Millisecond)),
	)
}
