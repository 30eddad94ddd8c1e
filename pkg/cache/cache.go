// Package cache stores rendered artifacts keyed by content hash.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for CLI usage
//   - [RedisCache]: shared storage for the HTTP server running on several hosts
//   - [NullCache]: never stores anything, for tests or --no-cache
//
// # Keys
//
// A [Keyer] derives keys from the hash of the scene description and the
// render options, so an unchanged scene renders from cache:
//
//	k := cache.NewDefaultKeyer()
//	key := k.ArtifactKey(cache.Hash(doc), cache.ArtifactKeyOpts{Format: "svg"})
//
// [ScopedKeyer] prefixes every key, which keeps tenants apart when one Redis
// instance serves several deployments.
package cache

import (
	"context"
	"time"
)

// Default lifetimes of cache entries.
const (
	TTLScene    = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiration.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the stored data and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of zero or less never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases held resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	// Clear removes all entries and returns how many were removed.
	Clear(ctx context.Context) (int, error)
}
