package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"staydesk/internal/app/policies"
)

var ErrClientMissing = errors.New("redis: client not configured")

// Store is the subset of the go-redis client used by the quote cache.
type Store interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *goredis.StatusCmd
}

// QuoteCache keeps encoded quotes in redis.
type QuoteCache struct {
	Store Store
}

var _ policies.QuoteCache = (*QuoteCache)(nil)

func NewClient(addr, password string, db int) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// Ping verifies connectivity.
func Ping(ctx context.Context, client *goredis.Client) error {
	if client == nil {
		return ErrClientMissing
	}
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: ping: %w", err)
	}
	return nil
}

func (c *QuoteCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c == nil || c.Store == nil {
		return nil, false, ErrClientMissing
	}
	payload, err := c.Store.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis: get %s: %w", key, err)
	}
	return payload, true, nil
}

func (c *QuoteCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if c == nil || c.Store == nil {
		return ErrClientMissing
	}
	if err := c.Store.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}
	return nil
}
