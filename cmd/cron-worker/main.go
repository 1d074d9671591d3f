package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/streetfood/rawmart/internal/cart"
	"github.com/streetfood/rawmart/internal/cron"
	"github.com/streetfood/rawmart/pkg/config"
	"github.com/streetfood/rawmart/pkg/db"
	"github.com/streetfood/rawmart/pkg/instance"
	"github.com/streetfood/rawmart/pkg/logger"
	"github.com/streetfood/rawmart/pkg/metrics"
	"github.com/streetfood/rawmart/pkg/migrate"
	"github.com/streetfood/rawmart/pkg/outbox"
	"github.com/streetfood/rawmart/pkg/redis"
)

const serviceName = "cron-worker"

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.New(logger.Options{ServiceName: serviceName}).Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	if envErr != nil {
		logg.Debug(context.Background(), "no .env file loaded")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": serviceName,
		"instance":    instance.GetID(),
	})

	service, cleanup, err := setup(ctx, cfg, logg)
	defer cleanup()
	if err != nil {
		logg.Error(ctx, "failed to start cron worker", err)
		cleanup()
		os.Exit(1)
	}

	logg.Info(ctx, "starting cron worker")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		cleanup()
		os.Exit(1)
	}
	logg.Info(ctx, "cron worker shutting down gracefully")
}

func setup(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*cron.Service, func(), error) {
	var closers []func() error
	closed := false
	cleanup := func() {
		if closed {
			return
		}
		closed = true
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logg.Error(context.Background(), "error during shutdown", err)
			}
		}
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, cleanup, fmt.Errorf("database: %w", err)
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return nil, cleanup, fmt.Errorf("dev migrations: %w", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return nil, cleanup, fmt.Errorf("redis: %w", err)
	}
	closers = append(closers, redisClient.Close)

	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), instance.GetID(), leaseFor(cfg.Maintenance.Interval))
	if err != nil {
		return nil, cleanup, err
	}

	registry, err := buildRegistry(cfg, logg, dbClient)
	if err != nil {
		return nil, cleanup, err
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metrics.NewOperationMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Maintenance.Interval,
	})
	return service, cleanup, err
}

// buildRegistry registers outbox retention always and cart expiry only when
// carts live in SQL; Redis carts expire by key TTL.
func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (*cron.Registry, error) {
	registry := cron.NewRegistry()

	retention, err := cron.NewOutboxRetentionJob(cron.OutboxRetentionJobParams{
		Logger:      logg,
		DB:          dbClient,
		Repository:  outbox.NewRepository(dbClient.DB()),
		Retention:   time.Duration(cfg.Maintenance.OutboxRetentionDays) * 24 * time.Hour,
		MaxAttempts: cfg.Outbox.MaxAttempts,
	})
	if err != nil {
		return nil, err
	}
	registry.Register(retention)

	if cfg.Cart.Backend != config.CartBackendSQL {
		return registry, nil
	}
	expiry, err := cron.NewCartExpiryJob(cron.CartExpiryJobParams{
		Logger: logg,
		DB:     dbClient,
		Carts:  cart.NewSQLStore(dbClient.DB()),
		TTL:    cfg.Cart.TTL,
	})
	if err != nil {
		return nil, err
	}
	registry.Register(expiry)
	return registry, nil
}

// leaseFor keeps the lock shorter than one tick so a crashed holder blocks
// at most a single cycle.
func leaseFor(interval time.Duration) time.Duration {
	return interval - interval/10
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return "rawmart:cron-worker:lock:" + env
}
