package cache

import (
	"context"
	"errors"
)

var ErrCacheMiss = errors.New("cache miss")

// Cache is the minimal read-through cache capability used by the provider
// layer to keep session payloads around within a run.
type Cache[K comparable, V any] interface {
	Get(ctx context.Context, key K) (*V, error)
	Invalidate(ctx context.Context, key K)
	InvalidateAll(ctx context.Context)
}
