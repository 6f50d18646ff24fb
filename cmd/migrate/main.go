package main

import (
	"context"
	"flag"
	"log"

	"veggi-storefront/internal/config"
	"veggi-storefront/internal/db"
	"veggi-storefront/internal/logging"
	"veggi-storefront/internal/migrate"

	"go.uber.org/zap"
)

func main() {
	down := flag.Bool("down", false, "revert the most recent migration")
	flag.Parse()

	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()
	logger = logger.Named("migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if *down {
		err = migrate.Rollback(ctx, pool, logger)
	} else {
		err = migrate.Apply(ctx, pool, logger)
	}
	if err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}
	logger.Info("migrations applied", zap.Bool("down", *down))
}
