// Package cache defines the port interface for the bounded delegation cache.
package cache

import (
	"context"
	"time"
)

// Cache is a bounded key-value cache with per-entry TTL. It is always owned
// by and injected into the component that needs it, never ambient state.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
