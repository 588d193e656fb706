package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Client holds the Redis client
type Client struct {
	Redis  *redis.Client
	logger *zap.Logger
}

// NewClient parses redisURL and checks the connection.
func NewClient(redisURL string, logger *zap.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed connecting to redis: %w", err)
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("redis connected", zap.String("addr", opts.Addr))

	return &Client{Redis: client, logger: logger}, nil
}

func (c *Client) Close() error {
	return c.Redis.Close()
}

func (c *Client) Ping(ctx context.Context) error {
	return c.Redis.Ping(ctx).Err()
}

// DeletePattern deletes all keys matching a pattern.
// Uses SCAN so a large keyspace never blocks the server.
func (c *Client) DeletePattern(ctx context.Context, pattern string) (int, error) {
	var cursor uint64
	var deleted int

	for {
		var keys []string
		var err error
		keys, cursor, err = c.Redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("failed to scan keys: %w", err)
		}

		if len(keys) > 0 {
			if err := c.Redis.Del(ctx, keys...).Err(); err != nil {
				return deleted, fmt.Errorf("failed to delete keys: %w", err)
			}
			deleted += len(keys)
		}

		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}
