// Package cache stores the output of slow external steps, such as
// `cargo metadata` and the enrichment tools, between runs.
//
// Three backends are provided: [FileCache] for the CLI, [RedisCache] for
// shared deployments of the HTTP server, and [NullCache] to disable caching.
// Keys are produced by a [Keyer] so every caller agrees on the layout.
package cache

import (
	"context"
	"os"
	"path/filepath"
	"time"
)

// Default entry lifetimes.
const (
	// TTLMetadata bounds how long a metadata snapshot is reused. Keys
	// already include the manifest and lockfile contents.
	TTLMetadata = 24 * time.Hour

	// TTLToolOutput bounds how long enrichment tool output is reused.
	// Advisory databases and registries change independently of the project.
	TTLToolOutput = time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiration.
//
// Get reports a miss with ok == false and a nil error. Implementations
// must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// DefaultDir returns the per-user cache directory for treasuremap.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "treasuremap"), nil
}
