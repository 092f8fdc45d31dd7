// Package redis provides an optional distributed BarrierCache backed by
// Redis, used in place of internal/repository/memory when REDIS_URL is
// set, so multiple server instances can share order-submission state
// for the same game.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis client used for barrier-coordination state.
type Client struct {
	rdb *redis.Client
}

// NewClient creates a Redis client from a connection URL and verifies
// connectivity with a ping.
func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}
