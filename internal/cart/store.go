package cart

import (
	"context"
	"errors"
)

// MutateFunc edits a cart in place. Returning an error discards the edit.
type MutateFunc func(*Cart) error

// Store persists carts keyed by session token. Mutate is a serialized
// read-modify-write on one session's cart.
type Store interface {
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Mutate(ctx context.Context, sessionID string, fn MutateFunc) (*Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

// ErrContention is returned when a store gave up serializing a mutation.
var ErrContention = errors.New("cart was modified concurrently")
