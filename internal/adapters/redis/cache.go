// Package redis implements ports.Cache on Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jsamuelsen/autoshop-quotes/internal/domain"
	"github.com/jsamuelsen/autoshop-quotes/internal/platform/config"
)

const pingTimeout = 5 * time.Second

// Cache is a ports.Cache backed by a Redis client. Keys are namespaced with
// a fixed prefix.
type Cache struct {
	client *redis.Client
	prefix string
}

// New connects to the server described by cfg and pings it.
func New(ctx context.Context, cfg config.CacheConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Addr, err)
	}

	return NewWithClient(client, cfg.KeyPrefix), nil
}

// NewWithClient wraps an existing client. The caller keeps ownership of it.
func NewWithClient(client *redis.Client, prefix string) *Cache {
	return &Cache{client: client, prefix: prefix}
}

// Get implements ports.Cache.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}

	if err != nil {
		return nil, domain.NewUnavailableError("redis", err.Error())
	}

	return data, nil
}

// Set implements ports.Cache.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	if err := c.client.Set(ctx, c.prefix+key, value, time.Duration(ttlSeconds)*time.Second).Err(); err != nil {
		return domain.NewUnavailableError("redis", err.Error())
	}

	return nil
}

// Delete implements ports.Cache.
func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return domain.NewUnavailableError("redis", err.Error())
	}

	return nil
}

// Close releases the client.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Name implements ports.HealthChecker.
func (c *Cache) Name() string {
	return "redis"
}

// Check implements ports.HealthChecker.
func (c *Cache) Check(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
