package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// LastSeenCache keeps the freshest last-seen timestamp per user so profile
// reads avoid a database round trip. Best effort: misses fall back to the
// users table.
type LastSeenCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewLastSeenCache(client *goredis.Client, ttl time.Duration) *LastSeenCache {
	if ttl == 0 {
		ttl = 24 * time.Hour
	}
	return &LastSeenCache{client: client, ttl: ttl}
}

func lastSeenKey(userID string) string {
	return fmt.Sprintf("last_seen:%s", userID)
}

func (c *LastSeenCache) Set(ctx context.Context, userID string, at time.Time) error {
	return c.client.Set(ctx, lastSeenKey(userID), at.UTC().Format(time.RFC3339), c.ttl).Err()
}

func (c *LastSeenCache) Get(ctx context.Context, userID string) (time.Time, bool, error) {
	val, err := c.client.Get(ctx, lastSeenKey(userID)).Result()
	if err == goredis.Nil {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return time.Time{}, false, nil
	}
	return t, true, nil
}
