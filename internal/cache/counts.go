package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tweetline:counts:"

// Counts are the follow counters shown on user profiles and lists.
type Counts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// CountCache stores per-user follow counters. A miss is reported with ok=false.
type CountCache interface {
	Get(ctx context.Context, userID string) (Counts, bool, error)
	Set(ctx context.Context, userID string, counts Counts) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

// RedisCountCache implements CountCache on redis with a fixed TTL.
type RedisCountCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCountCache(client *redis.Client, ttl time.Duration) *RedisCountCache {
	return &RedisCountCache{client: client, ttl: ttl}
}

func (c *RedisCountCache) Get(ctx context.Context, userID string) (Counts, bool, error) {
	var counts Counts
	data, err := c.client.Get(ctx, keyPrefix+userID).Bytes()
	if errors.Is(err, redis.Nil) {
		return counts, false, nil
	}
	if err != nil {
		return counts, false, fmt.Errorf("get counts: %w", err)
	}
	if err := json.Unmarshal(data, &counts); err != nil {
		// drop the corrupt entry, the caller reloads it
		_ = c.client.Del(ctx, keyPrefix+userID).Err()
		return Counts{}, false, nil
	}
	return counts, true, nil
}

func (c *RedisCountCache) Set(ctx context.Context, userID string, counts Counts) error {
	payload, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, keyPrefix+userID, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set counts: %w", err)
	}
	return nil
}

func (c *RedisCountCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = keyPrefix + id
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("invalidate counts: %w", err)
	}
	return nil
}

// NoopCountCache is used when no redis address is configured.
type NoopCountCache struct{}

func (NoopCountCache) Get(context.Context, string) (Counts, bool, error) { return Counts{}, false, nil }
func (NoopCountCache) Set(context.Context, string, Counts) error         { return nil }
func (NoopCountCache) Invalidate(context.Context, ...string) error       { return nil }

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}
