package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/streetfood/rawmart/pkg/logger"
)

type idleCartPruner interface {
	DeleteIdleBefore(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error)
}

type CartExpiryJobParams struct {
	Logger *logger.Logger
	DB     txRunner
	Carts  idleCartPruner
	TTL    time.Duration
}

// NewCartExpiryJob deletes SQL carts untouched for longer than TTL, the same
// lifetime the Redis backend enforces with key expiry.
func NewCartExpiryJob(params CartExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if params.TTL <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &cartExpiryJob{
		logg:  params.Logger,
		db:    params.DB,
		carts: params.Carts,
		ttl:   params.TTL,
		now:   time.Now,
	}, nil
}

type cartExpiryJob struct {
	logg  *logger.Logger
	db    txRunner
	carts idleCartPruner
	ttl   time.Duration
	now   func() time.Time
}

func (j *cartExpiryJob) Name() string { return "cart_expiry" }

func (j *cartExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	var expired int64
	err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := j.carts.DeleteIdleBefore(ctx, tx, cutoff)
		expired = rows
		return err
	})
	if err != nil {
		return fmt.Errorf("cart expiry: %w", err)
	}
	if expired > 0 {
		j.logg.Info(j.logg.WithFields(ctx, map[string]any{
			"cutoff":        cutoff,
			"carts_expired": expired,
		}), "expired idle carts")
	}
	return nil
}
