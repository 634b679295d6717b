package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	generationKey = "reports:generation"
	reportPrefix  = "reports"
)

// Client is the report cache. Every entry is namespaced by the current
// generation, and Invalidate bumps the generation instead of scanning keys.
type Client struct {
	rdb *redis.Client
	ttl time.Duration
}

func Initialize(redisURL string, ttl time.Duration) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewClient(rdb, ttl), nil
}

func NewClient(rdb *redis.Client, ttl time.Duration) *Client {
	return &Client{rdb: rdb, ttl: ttl}
}

func (c *Client) Generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get report generation: %w", err)
	}
	return gen, nil
}

func (c *Client) Get(ctx context.Context, generation int64, key string, dest interface{}) (bool, error) {
	val, err := c.rdb.Get(ctx, reportKey(generation, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get report: %w", err)
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return true, nil
}

func (c *Client) Set(ctx context.Context, generation int64, key string, value interface{}) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return c.rdb.Set(ctx, reportKey(generation, key), jsonData, c.ttl).Err()
}

func (c *Client) Invalidate(ctx context.Context) error {
	return c.rdb.Incr(ctx, generationKey).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func reportKey(generation int64, key string) string {
	return fmt.Sprintf("%s:%d:%s", reportPrefix, generation, key)
}
