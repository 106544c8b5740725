// Package cache stores decoded definition trees between runs so unchanged
// definition roots are not parsed again.
package cache

import (
	"context"
	"errors"
	"time"
)

// Cache is a byte oriented key/value store with expiry
type Cache interface {
	// Get returns ErrMiss when key is absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value. A zero ttl uses the backend default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Clear removes every key under the backend prefix.
	Clear(ctx context.Context) error
}

// Config holds settings shared by all backends
type Config struct {
	DefaultTTL time.Duration
	Prefix     string
}

// DefaultConfig returns the default backend settings
func DefaultConfig() Config {
	return Config{
		DefaultTTL: 24 * time.Hour,
		Prefix:     "ormschema:",
	}
}

// ErrMiss is returned for absent or expired keys
var ErrMiss = errors.New("cache miss")

// IsMiss reports whether err is a cache miss
func IsMiss(err error) bool {
	return errors.Is(err, ErrMiss)
}
