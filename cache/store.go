package cache

import (
	"context"
	"errors"

	"github.com/goliatone/go-collection-cache/internal/cacheinfra"
)

// ErrInvalidResultType is returned by typed helpers when a stored value does not have the expected shape.
var ErrInvalidResultType = errors.New("cache: invalid result type")

// WriteOptions carries the cache-affecting subset of options applied to a write.
type WriteOptions = cacheinfra.WriteOptions

// Codec converts stored values to bytes for backends that cannot hold Go values.
type Codec = cacheinfra.Codec

// Store is the key-value backend consulted by the collection proxy.
// Implementations give atomic read/write per key and nothing across keys.
type Store interface {
	// Read returns the stored value and true, or false on a miss.
	Read(ctx context.Context, key string) (any, bool, error)
	// Write stores value under key, replacing any previous value.
	Write(ctx context.Context, key string, value any, opts WriteOptions) error
	// DeleteMatching removes every key starting with prefix.
	DeleteMatching(ctx context.Context, prefix string) error
}

// Read is a type-safe wrapper around Store.Read.
// A present value of a different type is reported as ErrInvalidResultType.
func Read[T any](ctx context.Context, store Store, key string) (T, bool, error) {
	var zero T
	value, ok, err := store.Read(ctx, key)
	if err != nil || !ok {
		return zero, ok, err
	}
	if value == nil {
		return zero, true, nil
	}
	typed, ok := value.(T)
	if !ok {
		return zero, true, ErrInvalidResultType
	}
	return typed, true, nil
}
