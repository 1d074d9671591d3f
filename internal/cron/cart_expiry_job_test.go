package cron

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streetfood/rawmart/internal/cart"
	"github.com/streetfood/rawmart/pkg/db/dbtest"
	"github.com/streetfood/rawmart/pkg/logger"
)

func TestCartExpiryDeletesIdleCarts(t *testing.T) {
	ctx := context.Background()
	conn := dbtest.Open(t)
	store := cart.NewSQLStore(conn.DB())

	_, err := store.Mutate(ctx, "session_1700000000000_abcdefghi", func(c *cart.Cart) error {
		c.AddLine(cart.Line{MaterialID: 1, MaterialName: "Fresh Tomatoes", Quantity: 2, UnitPrice: decimal.NewFromInt(45)})
		return nil
	})
	require.NoError(t, err)

	job, err := NewCartExpiryJob(CartExpiryJobParams{
		Logger: logger.Nop(),
		DB:     conn,
		Carts:  store,
		TTL:    time.Hour,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(ctx))
	current, err := store.Load(ctx, "session_1700000000000_abcdefghi")
	require.NoError(t, err)
	assert.Len(t, current.Lines, 1)

	job.(*cartExpiryJob).now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	require.NoError(t, job.Run(ctx))
	current, err = store.Load(ctx, "session_1700000000000_abcdefghi")
	require.NoError(t, err)
	assert.Empty(t, current.Lines)
}

func TestNewCartExpiryJobValidates(t *testing.T) {
	_, err := NewCartExpiryJob(CartExpiryJobParams{Logger: logger.Nop(), DB: passthroughTx{}})
	assert.Error(t, err)
	_, err = NewCartExpiryJob(CartExpiryJobParams{Logger: logger.Nop(), DB: passthroughTx{}, Carts: cart.NewSQLStore(nil)})
	assert.Error(t, err)
}
