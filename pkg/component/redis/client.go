// Package redis provides the Redis cache component.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/proxyscope/pkg/component/storage"
	options "github.com/kart-io/proxyscope/pkg/options/redis"
)

// Client wraps go-redis and provides a Redis cache client.
// It implements the storage.Client interface.
type Client struct {
	rdb  *goredis.Client
	opts *options.Options
}

// Compile-time check that Client implements storage.Client.
var _ storage.Client = (*Client)(nil)

// New creates a new Redis client from the provided options.
func New(opts *options.Options) (*Client, error) {
	return NewWithContext(context.Background(), opts)
}

// NewWithContext creates a new Redis client with the given context.
// This allows for timeout and cancellation during connection establishment.
func NewWithContext(ctx context.Context, opts *options.Options) (*Client, error) {
	if opts == nil {
		return nil, fmt.Errorf("redis options cannot be nil")
	}

	if errs := opts.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid redis options: %w", errors.Join(errs...))
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Password:     opts.Password,
		DB:           opts.Database,
		MaxRetries:   opts.MaxRetries,
		PoolSize:     opts.PoolSize,
		MinIdleConns: opts.MinIdleConns,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		PoolTimeout:  opts.PoolTimeout,
	})

	client := &Client{
		rdb:  rdb,
		opts: opts,
	}

	// Verify connection with context
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// RDB returns the underlying go-redis client.
func (c *Client) RDB() *goredis.Client {
	return c.rdb
}

// Name returns the name of the storage client.
func (c *Client) Name() string {
	return "redis"
}

// Ping verifies the connection to the Redis server.
func (c *Client) Ping(ctx context.Context) error {
	if c.rdb == nil {
		return fmt.Errorf("redis connection is nil")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := c.rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

// Close closes the Redis connection and releases resources.
func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}

	if err := c.rdb.Close(); err != nil {
		return fmt.Errorf("failed to close redis connection: %w", err)
	}

	return nil
}

// Health returns a HealthChecker function for Redis health monitoring.
// Implements storage.Client interface.
func (c *Client) Health() storage.HealthChecker {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return c.Ping(ctx)
	}
}

// PoolStats returns connection pool statistics.
func (c *Client) PoolStats() *goredis.PoolStats {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.PoolStats()
}
