package redis

import (
	"context"
	"strconv"
	"time"
)

// FixedWindowAllow counts a hit against scope in the clock-aligned window
// containing now and reports whether the count is within limit. Each window
// has its own key, which expires once the window has passed.
func (c *Client) FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error) {
	if c.cmd == nil {
		return false, 0, errNotConnected
	}
	if window <= 0 {
		window = time.Second
	}
	now := time.Now()
	start := now.Truncate(window)
	k := key(kindRateLimit, scope, strconv.FormatInt(start.Unix(), 10))

	count, err := c.cmd.Incr(ctx, k).Result()
	if err != nil {
		return false, 0, err
	}
	if count == 1 {
		if err := c.cmd.Expire(ctx, k, start.Add(window).Sub(now)+time.Second).Err(); err != nil {
			return false, count, err
		}
	}
	return count <= limit, count, nil
}
