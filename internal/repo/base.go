// Package repo holds the plumbing shared by the GORM-backed repositories.
package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base is embedded by repositories. Its connection is a transaction once
// the repository has been bound to one.
type Base struct {
	conn *gorm.DB
}

func NewBase(conn *gorm.DB) Base {
	return Base{conn: conn}
}

// DB scopes the connection to ctx; a nil ctx returns it unscoped.
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.conn
	}
	return b.conn.WithContext(ctx)
}

// Bind swaps in tx. A nil tx keeps the current connection.
func (b Base) Bind(tx *gorm.DB) Base {
	if tx != nil {
		b.conn = tx
	}
	return b
}

// All loads every row of T in the given order clauses.
func All[T any](ctx context.Context, b Base, orderBy ...string) ([]T, error) {
	q := b.DB(ctx)
	for _, clause := range orderBy {
		q = q.Order(clause)
	}
	var rows []T
	err := q.Find(&rows).Error
	return rows, err
}
