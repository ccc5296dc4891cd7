// Package cache stores pipeline results keyed by their inputs.
//
// Every stage of the fishbone pipeline is deterministic: the same tree and
// options always give the same layout, and the same layout and render
// options always give the same bytes. Results are therefore cached under
// content-derived keys produced by a [Keyer].
//
// Three backends implement [Cache]:
//
//   - [FileCache] for the CLI, under the XDG cache directory
//   - [RedisCache] for the HTTP service, shared between replicas
//   - [NullCache] when caching is disabled
//
// [Instrument] wraps any backend and reports hits, misses and writes to the
// observability cache hooks.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
type Cache interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default entry lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
