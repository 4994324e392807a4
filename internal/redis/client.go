package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/trogers1052/stock-trader-dashboard/internal/config"
)

const keyPrefix = "dashboard:query:"

// Client wraps the Redis client as a shared store for dashboard query results
type Client struct {
	rdb *redis.Client
}

// New creates a new Redis client
func New(cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewFromClient wraps an existing go-redis client
func NewFromClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Load returns the stored payload for a query key. A missing key is not an error.
func (c *Client) Load(ctx context.Context, key string) ([]byte, bool, error) {
	payload, err := c.rdb.Get(ctx, queryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load query %s: %w", key, err)
	}
	return payload, true, nil
}

// Save stores a query payload. A zero ttl keeps it until invalidated.
func (c *Client) Save(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, queryKey(key), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save query %s: %w", key, err)
	}
	return nil
}

// Delete removes query keys
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = queryKey(k)
	}
	if err := c.rdb.Del(ctx, redisKeys...).Err(); err != nil {
		return fmt.Errorf("failed to delete queries: %w", err)
	}
	return nil
}

func queryKey(key string) string {
	return keyPrefix + key
}
