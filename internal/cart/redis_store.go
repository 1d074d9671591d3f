package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	rediscache "github.com/streetfood/rawmart/pkg/redis"
)

type redisCartClient interface {
	Get(ctx context.Context, key string) (string, error)
	Update(ctx context.Context, key string, ttl time.Duration, fn rediscache.UpdateFunc) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// RedisStore keeps each cart as one JSON document that expires after ttl of
// inactivity. Writes go through WATCH/MULTI so concurrent mutations of one
// session serialize.
type RedisStore struct {
	client redisCartClient
	ttl    time.Duration
}

func NewRedisStore(client redisCartClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Load(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := r.client.Get(ctx, r.client.CartKey(sessionID))
	if errors.Is(err, goredis.Nil) {
		return NewCart(sessionID), nil
	}
	if err != nil {
		return nil, err
	}
	return decodeCart(sessionID, raw)
}

func (r *RedisStore) Mutate(ctx context.Context, sessionID string, fn MutateFunc) (*Cart, error) {
	var result *Cart
	err := r.client.Update(ctx, r.client.CartKey(sessionID), r.ttl, func(current string, exists bool) (string, error) {
		working := NewCart(sessionID)
		if exists {
			decoded, err := decodeCart(sessionID, current)
			if err != nil {
				return "", err
			}
			working = decoded
		}
		if err := fn(working); err != nil {
			return "", err
		}

		now := time.Now().UTC()
		if working.CreatedAt.IsZero() {
			working.CreatedAt = now
		}
		working.UpdatedAt = now

		encoded, err := json.Marshal(working)
		if err != nil {
			return "", fmt.Errorf("encode cart: %w", err)
		}
		result = working
		return string(encoded), nil
	})
	if errors.Is(err, rediscache.ErrConcurrentUpdate) {
		return nil, ErrContention
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.client.CartKey(sessionID))
}

func decodeCart(sessionID, raw string) (*Cart, error) {
	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decode cart %s: %w", sessionID, err)
	}
	cart.SessionID = sessionID
	if cart.Lines == nil {
		cart.Lines = []Line{}
	}
	return &cart, nil
}
