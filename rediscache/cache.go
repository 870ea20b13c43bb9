package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pelagos-finance/defi-indexer/config"
)

// Cache is a short-TTL byte store on top of redis. It backs the verification
// result cache and doubles as the pub/sub transport for health warnings.
type Cache struct {
	client *redis.Client
}

func New(cfg *config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("can't ping redis: %w", err)
	}
	return &Cache{client: client}, nil
}

// Get returns (nil, nil) on a cache miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	res, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("can't get cache key %s: %w", key, err)
	}
	return res, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("can't set cache key %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("can't delete cache key %s: %w", key, err)
	}
	return nil
}

func (c *Cache) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := c.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("can't publish to channel %s: %w", channel, err)
	}
	return nil
}

func (c *Cache) Close() error {
	return c.client.Close()
}
