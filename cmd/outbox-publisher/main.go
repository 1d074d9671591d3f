package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/streetfood/rawmart/pkg/config"
	"github.com/streetfood/rawmart/pkg/db"
	"github.com/streetfood/rawmart/pkg/instance"
	"github.com/streetfood/rawmart/pkg/logger"
	"github.com/streetfood/rawmart/pkg/metrics"
	"github.com/streetfood/rawmart/pkg/migrate"
	"github.com/streetfood/rawmart/pkg/outbox"
	"github.com/streetfood/rawmart/pkg/pubsub"
)

const serviceName = "outbox-publisher"

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
		logg.Error(ctx, "failed to start outbox publisher", err)
		cleanup()
		os.Exit(1)
	}

	logg.Info(ctx, "starting outbox publisher")
	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "outbox publisher stopped unexpectedly", err)
		cleanup()
		os.Exit(1)
	}
	logg.Info(ctx, "outbox publisher shutting down gracefully")
}

// setup opens the database and Pub/Sub clients. The returned cleanup closes
// whatever was opened, in reverse order, and is safe to call more than once.
func setup(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*Service, func(), error) {
	var closers []func() error
	done := false
	cleanup := func() {
		if done {
			return
		}
		done = true
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				logg.Error(context.Background(), "error during shutdown", err)
			}
		}
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return nil, cleanup, err
	}

	pubsubClient, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return nil, cleanup, err
	}
	closers = append(closers, pubsubClient.Close)

	service, err := NewService(ServiceParams{
		Config:     cfg,
		Logger:     logg,
		DB:         dbClient,
		PubSub:     pubsubClient,
		Repository: outbox.NewRepository(dbClient.DB()),
		Metrics:    metrics.NewOperationMetrics(prometheus.DefaultRegisterer),
	})
	return service, cleanup, err
}
