// Package cache provides the key-value store used to memoize model replies.
//
// Three backends share the [Cache] interface:
//   - [NullCache]: never stores anything (the default)
//   - [FileCache]: one JSON file per entry under a local directory
//   - [RedisCache]: a shared Redis instance, for several server replicas
//
// Keys are built by a [Keyer] so that every backend namespaces entries the
// same way. Cache failures are never fatal to callers: a failing Get is
// treated as a miss and a failing Set is logged and ignored.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is a byte-oriented key-value store with optional expiry.
type Cache interface {
	// Get returns the stored value and true on a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Backend names accepted by [Open].
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Options selects and configures a cache backend.
type Options struct {
	Backend  string // none, file or redis
	Dir      string // FileCache directory
	RedisURL string // redis://host:port/db
}

// Open creates the backend named by opts.Backend. An empty backend is
// the same as "none".
func Open(opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendNone:
		return NewNullCache(), nil
	case BackendFile:
		if opts.Dir == "" {
			return nil, fmt.Errorf("file cache: directory is required")
		}
		c, err := NewFileCache(opts.Dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		c, err := NewRedisCacheFromURL(opts.RedisURL)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Backend)
	}
}
