package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "finboard:cache:"

// Connect initializes a Redis client from a redis:// URL or host:port and
// verifies it with a PING.
func Connect(ctx context.Context, redisURL string) (*redis.Client, error) {
	var client *redis.Client
	if strings.HasPrefix(redisURL, "redis://") || strings.HasPrefix(redisURL, "rediss://") {
		opt, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{Addr: redisURL})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Redis is a [Cache] shared between finboard instances. Entries expire
// server-side after the TTL. Values round-trip through JSON, so they come
// back as the generic types encoding/json produces.
//
// Redis failures are logged and treated as misses; a broken cache never
// fails an acquisition.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

// NewRedis wraps client. A nil logger selects slog.Default().
func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	return &Redis{client: client, logger: logger}
}

func (r *Redis) Get(ctx context.Context, key string) (any, bool) {
	raw, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		r.logger.Warn("cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return value, true
}

func (r *Redis) Put(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("cache entry not encodable", "key", key, "error", err)
		return
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, raw, TTL).Err(); err != nil {
		r.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// Close closes the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}
