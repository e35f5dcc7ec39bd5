package cache

import (
	"context"
	"time"
)

// Backend stores analysis reports keyed by content digest.
type Backend interface {
	// Get returns (value, found, error). A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
