package cache

import (
	"context"
	"time"
)

// Store is a TTL'd byte store used for scan sessions and the cached license
// snapshot. The memory implementation serves single-instance deployments;
// Redis serves multi-terminal ones.
type Store interface {
	// Get retrieves a value by key. Returns ErrMiss if not found.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value by key.
	Delete(ctx context.Context, key string) error
}

type storeError string

func (e storeError) Error() string { return string(e) }

// ErrMiss indicates the key was not found in the store.
const ErrMiss storeError = "cache miss"
