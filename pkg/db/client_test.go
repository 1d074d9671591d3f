package db

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/streetfood/rawmart/pkg/config"
	"github.com/streetfood/rawmart/pkg/logger"
)

type widget struct {
	ID   int
	Name string
}

func openWidgets(t *testing.T) *Client {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	pool, err := conn.DB()
	require.NoError(t, err)
	pool.SetMaxOpenConns(1)
	require.NoError(t, conn.AutoMigrate(&widget{}))
	t.Cleanup(func() { _ = pool.Close() })
	return FromGorm(conn)
}

func countWidgets(t *testing.T, c *Client) int64 {
	t.Helper()
	var n int64
	require.NoError(t, c.DB().Model(&widget{}).Count(&n).Error)
	return n
}

func TestWithTxCommitsOnNilError(t *testing.T) {
	c := openWidgets(t)
	require.NoError(t, c.WithTx(context.Background(), func(tx *gorm.DB) error {
		return tx.Create(&widget{Name: "kept"}).Error
	}))
	assert.EqualValues(t, 1, countWidgets(t, c))
}

func TestWithTxRollsBackOnError(t *testing.T) {
	c := openWidgets(t)
	boom := errors.New("boom")
	err := c.WithTx(context.Background(), func(tx *gorm.DB) error {
		require.NoError(t, tx.Create(&widget{Name: "dropped"}).Error)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, countWidgets(t, c))
}

func TestWithTxRollsBackAndRepanics(t *testing.T) {
	c := openWidgets(t)
	assert.Panics(t, func() {
		_ = c.WithTx(context.Background(), func(tx *gorm.DB) error {
			require.NoError(t, tx.Create(&widget{Name: "dropped"}).Error)
			panic("mid-transaction")
		})
	})
	assert.Zero(t, countWidgets(t, c))
}

func TestPingAndRowLocks(t *testing.T) {
	c := openWidgets(t)
	assert.NoError(t, c.Ping(context.Background()))
	assert.False(t, SupportsRowLocks(c.DB()), "sqlite has no row locks")
	assert.False(t, SupportsRowLocks(nil))
}

func TestNewOpensSQLite(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})

	c, err := New(context.Background(), config.DBConfig{Driver: "sqlite", DSN: "file::memory:"}, logg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.NoError(t, c.Ping(context.Background()))
	assert.Contains(t, buf.String(), `"driver":"sqlite"`)

	_, err = New(context.Background(), config.DBConfig{}, logg)
	assert.Error(t, err)
}

func TestQueryLoggerReportsSlowStatements(t *testing.T) {
	var buf bytes.Buffer
	ql := newQueryLogger(logger.New(logger.Options{ServiceName: "test", Output: &buf}), time.Millisecond)
	sql := func() (string, int64) { return "SELECT 1", 1 }

	ql.Trace(context.Background(), time.Now(), sql, nil)
	assert.Empty(t, buf.String(), "fast statements are not logged")

	ql.Trace(context.Background(), time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), "db.slow_query")
	assert.Contains(t, buf.String(), `"sql":"SELECT 1"`)

	buf.Reset()
	ql.Trace(context.Background(), time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String(), "not-found is not a failure")
}

func TestIsUniqueViolation(t *testing.T) {
	pgx := &pgconn.PgError{Code: "23505", ConstraintName: "ux_cart_items_line"}
	lib := &pq.Error{Code: "23505", Constraint: "ux_carts_session"}

	tests := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"pgx any constraint", pgx, "", true},
		{"pgx named match", pgx, "ux_cart_items_line", true},
		{"pgx named mismatch", pgx, "other", false},
		{"pgx foreign key", &pgconn.PgError{Code: "23503"}, "", false},
		{"lib/pq named match", lib, "ux_carts_session", true},
		{"lib/pq mismatch", lib, "ux_cart_items_line", false},
		{"sqlite message", errors.New("UNIQUE constraint failed: carts.session_id"), "", true},
		{"unrelated message", errors.New("disk full"), "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err, tt.constraint))
		})
	}
}
