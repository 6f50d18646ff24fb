package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"veggi-storefront/internal/backend"
	"veggi-storefront/internal/config"
	"veggi-storefront/internal/db"
	"veggi-storefront/internal/events"
	"veggi-storefront/internal/httpserver"
	"veggi-storefront/internal/logging"
	"veggi-storefront/internal/metrics"
	"veggi-storefront/internal/migrate"
	"veggi-storefront/internal/repository/storage"
	"veggi-storefront/internal/service/checkout"
	"veggi-storefront/internal/session"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const sweepInterval = 10 * time.Minute

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repo, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("open storage", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer closeStorage()

	client := backend.New(backend.Options{
		APIBase:     cfg.APIBaseURL,
		PaymentBase: cfg.PaymentBaseURL,
		Timeout:     cfg.BackendTimeout,
		Logger:      logger.Named("backend"),
	})

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaCheckoutTopic, logger.Named("events"))

	m := metrics.New()

	registry := session.NewRegistry(session.Options{
		TTL:     cfg.SessionTTL,
		Storage: repo,
		Backend: client,
		Checkout: checkout.Options{
			ShippingFee:  &cfg.ShippingFee,
			Currency:     cfg.Currency,
			Sandbox:      cfg.PaymentSandbox,
			PublicOrigin: cfg.PublicOrigin,
			NotifyBase:   client.PaymentBase(),
			Publisher:    publisher,
			Recorder:     m,
		},
		DisableHostedPayments: !cfg.PaymentEnabled,
		Logger:                logger.Named("session"),
	})
	go registry.Run(ctx, sweepInterval)

	var pinger storage.Pinger
	if p, ok := repo.(storage.Pinger); ok {
		pinger = p
	}

	srv, err := httpserver.New(cfg.HTTPAddr, logger.Named("http"), httpserver.Deps{
		Backend:       client,
		Sessions:      registry,
		Storage:       pinger,
		Metrics:       m,
		CORSOrigins:   cfg.CORSOrigins,
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: strings.HasPrefix(cfg.PublicOrigin, "https://"),
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	logger.Info("storefront configured",
		zap.String("storage", cfg.StorageBackend),
		zap.String("api_base", cfg.APIBaseURL),
		zap.Bool("kafka", publisher.Enabled()),
		zap.Bool("payhere_sandbox", cfg.PaymentSandbox),
	)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.Stringer("signal", sig))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Drain HTTP first so in-flight checkouts can still publish.
	err = srv.Shutdown(shutdownCtx)
	err = multierr.Append(err, publisher.Close())
	if err != nil {
		for _, e := range multierr.Errors(err) {
			logger.Error("graceful shutdown failed", zap.Error(e))
		}
	} else {
		logger.Info("server stopped")
	}
}

// openStorage returns the cart storage selected by STORAGE_BACKEND and a
// func releasing its connections.
func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (storage.Repository, func(), error) {
	switch cfg.StorageBackend {
	case "", "memory":
		return storage.NewMemory(), func() {}, nil
	case "postgres":
		pool, err := db.Connect(ctx, cfg.DBConnString, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := migrate.Apply(ctx, pool, logger.Named("migrate")); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return storage.NewPostgres(pool, logger.Named("storage")), pool.Close, nil
	case "redis":
		client, err := db.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewRedis(client, cfg.StorageTTL), func() { _ = client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}
