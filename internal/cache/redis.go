package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"memberhub_backend/internal/logger"
)

const keyPrefix = "memberhub:"

type Options struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache bypasses itself after the first connection failure is logged,
// so a Redis outage degrades to uncached reads.
type RedisCache struct {
	client *redis.Client

	warnedUnavailable atomic.Bool
}

func NewRedisCache(opts Options) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	return &RedisCache{client: client}
}

// NewFromClient wraps an existing client. Tests pass a miniredis client.
func NewFromClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (r *RedisCache) warnOnce(err error) {
	if r.warnedUnavailable.CompareAndSwap(false, true) {
		logger.Warn("redis unavailable, bypassing cache", "error", err)
	}
}

func (r *RedisCache) GetJSON(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		r.warnOnce(err)
		return false, nil
	}
	r.warnedUnavailable.Store(false)

	if err := json.Unmarshal(raw, dst); err != nil {
		// stale shape after a deploy; drop it
		_ = r.client.Del(ctx, keyPrefix+key).Err()
		return false, nil
	}
	return true, nil
}

func (r *RedisCache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := r.client.Set(ctx, keyPrefix+key, raw, ttl).Err(); err != nil {
		r.warnOnce(err)
	}
	return nil
}

func (r *RedisCache) version(ctx context.Context, namespace string) int64 {
	v, err := r.client.Get(ctx, keyPrefix+namespace+":version").Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.warnOnce(err)
		}
		return 0
	}
	return v
}

func (r *RedisCache) Key(ctx context.Context, namespace, suffix string) string {
	return fmt.Sprintf("%s:v%d:%s", namespace, r.version(ctx, namespace), suffix)
}

func (r *RedisCache) Invalidate(ctx context.Context, namespace string) error {
	if err := r.client.Incr(ctx, keyPrefix+namespace+":version").Err(); err != nil {
		return fmt.Errorf("cache invalidate %s: %w", namespace, err)
	}
	return nil
}

func (r *RedisCache) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}
