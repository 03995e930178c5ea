// Package cache stores JSON-encoded read models in Redis. Writers invalidate
// a whole namespace by bumping its version counter, which orphans every key
// built from the previous version.
package cache

import (
	"context"
	"time"
)

type Cache interface {
	// GetJSON decodes the value at key into dst and reports a hit.
	GetJSON(ctx context.Context, key string, dst interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	// Key builds a versioned key inside namespace.
	Key(ctx context.Context, namespace, suffix string) string
	// Invalidate bumps the namespace version.
	Invalidate(ctx context.Context, namespace string) error
	Ping(ctx context.Context) error
	Close() error
}

// Noop is used when Redis is not configured.
type Noop struct{}

func (Noop) GetJSON(context.Context, string, interface{}) (bool, error) {
	return false, nil
}

func (Noop) SetJSON(context.Context, string, interface{}, time.Duration) error {
	return nil
}

func (Noop) Key(_ context.Context, namespace, suffix string) string {
	return namespace + ":" + suffix
}

func (Noop) Invalidate(context.Context, string) error {
	return nil
}

func (Noop) Ping(context.Context) error {
	return nil
}

func (Noop) Close() error {
	return nil
}
