// Package cache provides the rendered-image cache.
//
// Encoded tokens are a pure function of diagram source, so identical
// source always maps to the same token. That makes tokens natural content
// addresses: once a diagram has been fetched from a rendering server, the
// image bytes can be served from cache for any later render of the same
// source, format, and encoding scheme.
//
// Three backends are provided:
//   - [FileCache]: directory of entry files, the default for CLI usage
//   - [RedisCache]: shared cache for server deployments
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"time"
)

// TTLRender bounds how long rendered image bytes stay cached. Tokens are
// content addresses, so entries never go stale; the TTL only bounds
// storage growth.
const TTLRender = 7 * 24 * time.Hour

// Cache stores opaque byte values under string keys with per-entry TTL.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
