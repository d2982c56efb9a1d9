// Package cache provides a small byte-value cache with memory and redis
// backends.
package cache

import (
	"context"
	"time"
)

// Store is a key/value cache. A ttl of zero or less means no expiry.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Backends accepted by New.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)
