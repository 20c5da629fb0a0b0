// Package cache stores generated maps and rendered artifacts.
//
// A map is fully determined by its seed and configuration, so caching is
// purely an optimisation: every entry can be rebuilt. Keys come from a
// [Keyer] and values are opaque bytes.
//
// Backends:
//   - [NullCache] stores nothing
//   - [FileCache] stores one file per key under a directory, used by the CLI
//   - [RedisCache] stores keys in Redis for shared deployments
package cache

import (
	"context"
	"time"
)

// Cache is a byte store with optional expiry.
type Cache interface {
	// Get returns the value for key and whether it was found. Expired
	// entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	MapTTL      = 30 * 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)
