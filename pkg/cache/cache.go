// Package cache provides caching for the render pipeline and its hosts.
//
// Pipeline stages cache by content: computed canvas geometry and rendered
// artifacts are keyed on the document hash plus every option that influenced
// them, so identical work is never done twice. Hosts additionally cache
// document payloads by ID in front of remote stores.
//
// # Backends
//
//   - MemoryCache: in-process, for tests and single-binary serving
//   - FileCache: on-disk entries under a directory, for CLI usage
//   - RedisCache: shared cache for multi-instance deployments
//   - NullCache: disables caching
//
// Keys are produced by a Keyer so every component agrees on the key layout.
// ScopedKeyer prefixes keys when deployments share one backend.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the cache.
	Close() error
}

// Entry lifetimes per key family. Geometry and artifacts are keyed on
// content hashes and never go stale, so their TTL only bounds backend
// growth. Document payloads are keyed by ID and invalidated on writes;
// their TTL is a safety net for missed invalidations.
const (
	TTLDocument = 15 * time.Minute
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
