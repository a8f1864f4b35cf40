// Package cachex wraps the Redis client behind an explicitly constructed
// handle with a connect/ping/close lifecycle. Components receive the handle
// by injection; there is no package-level connection state.
package cachex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss reports an absent key. Callers decide whether a miss is an error.
var ErrMiss = errors.New("cachex: key not found")

type Config struct {
	Addr     string
	Username string
	Password string
	DB       int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Client is a thin typed facade over a single Redis connection pool.
type Client struct {
	rc *redis.Client
}

// Connect establishes the connection pool and verifies it with a ping.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("cachex: address is empty")
	}

	rc := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("cachex: failed to ping server: %w", err)
	}

	return &Client{rc: rc}, nil
}

// Ping verifies the connection is still alive.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.rc.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("cachex: ping failed: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rc.Close()
}

// SetJSON stores a JSON-encoded value under key with the given TTL.
// A zero TTL stores without expiry.
func (c *Client) SetJSON(ctx context.Context, key string, v any, ttl time.Duration) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cachex: failed to marshal value: %w", err)
	}
	if err := c.rc.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cachex: failed to set %q: %w", key, err)
	}
	return nil
}

// GetJSON loads and decodes the value at key into dest, or ErrMiss.
func (c *Client) GetJSON(ctx context.Context, key string, dest any) error {
	raw, err := c.rc.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrMiss
		}
		return fmt.Errorf("cachex: failed to get %q: %w", key, err)
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("cachex: failed to unmarshal %q: %w", key, err)
	}
	return nil
}

// Delete removes the given keys. Missing keys are not an error.
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := c.rc.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cachex: failed to delete keys: %w", err)
	}
	return nil
}

// Exists reports whether key is present.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rc.Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("cachex: failed to check %q: %w", key, err)
	}
	return n > 0, nil
}

// HSet writes one field of a hash.
func (c *Client) HSet(ctx context.Context, key, field, value string) error {
	if err := c.rc.HSet(ctx, key, field, value).Err(); err != nil {
		return fmt.Errorf("cachex: failed to hset %q: %w", key, err)
	}
	return nil
}

// HGetAll returns every field of a hash. A missing key yields an empty map.
func (c *Client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	fields, err := c.rc.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("cachex: failed to hgetall %q: %w", key, err)
	}
	return fields, nil
}

// HDelete removes fields from a hash.
func (c *Client) HDelete(ctx context.Context, key string, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	if err := c.rc.HDel(ctx, key, fields...).Err(); err != nil {
		return fmt.Errorf("cachex: failed to hdel %q: %w", key, err)
	}
	return nil
}

// Expire sets the TTL on an existing key.
func (c *Client) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if err := c.rc.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("cachex: failed to expire %q: %w", key, err)
	}
	return nil
}

// TTL returns the remaining lifetime of key.
func (c *Client) TTL(ctx context.Context, key string) (time.Duration, error) {
	d, err := c.rc.TTL(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cachex: failed to read ttl of %q: %w", key, err)
	}
	return d, nil
}

// Increment atomically bumps a counter, attaching the TTL when the counter
// is created. Used for rolling-window rate caps.
func (c *Client) Increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	n, err := c.rc.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("cachex: failed to incr %q: %w", key, err)
	}
	if n == 1 && ttl > 0 {
		if err := c.rc.Expire(ctx, key, ttl).Err(); err != nil {
			return n, fmt.Errorf("cachex: failed to expire counter %q: %w", key, err)
		}
	}
	return n, nil
}
