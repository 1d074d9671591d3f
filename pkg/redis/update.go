package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const maxWatchRetries = 5

// ErrConcurrentUpdate means every optimistic attempt lost to another writer.
var ErrConcurrentUpdate = errors.New("redis: concurrent update retries exhausted")

// UpdateFunc maps the current value of a key to its replacement. exists is
// false when the key is absent. Returning "" deletes the key.
type UpdateFunc func(current string, exists bool) (string, error)

// Update applies fn under WATCH so the write only lands when key is unchanged
// since it was read. ttl is reset on every write.
func (c *Client) Update(ctx context.Context, k string, ttl time.Duration, fn UpdateFunc) error {
	if c.watch == nil {
		return errNotConnected
	}
	apply := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, k).Result()
		exists := err == nil
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		next, err := fn(current, exists)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == "" {
				pipe.Del(ctx, k)
			} else {
				pipe.Set(ctx, k, next, ttl)
			}
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		if err := c.watch.Watch(ctx, apply, k); !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return ErrConcurrentUpdate
}
