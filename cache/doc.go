// Package cache provides the backing-store contract and key serialization used by collection caching.
//
// # Overview
//
// This package exports the interfaces the collectioncache proxy persists through:
//
//   - Store: a key-value backend with Read, Write and prefix-based DeleteMatching
//   - KeySerializer: builds stable cache key segments from key-affecting values
//   - Codec: converts stored values to bytes for remote backends
//
// Two Store implementations are provided:
//
//	// in-process, sturdyc backed
//	store, err := cache.NewMemoryStore(cache.DefaultConfig())
//
//	// redis backed, values encoded with the collectioncache entry codec
//	store, err := cache.NewRedisStore(redisClient, collectioncache.NewCodec())
//
// # Expiry
//
// WriteOptions.ExpiresIn sets a per-entry lifetime. The memory store keeps the
// expiry next to the value and reports expired entries as misses; it never keeps
// an entry longer than Config.TTL. The redis store maps ExpiresIn to the key TTL.
//
// # Consistency
//
// Stores give atomic reads and writes per key only. Two callers racing on a miss
// both write and the last write wins.
//
// # Key Serialization
//
// The default key serializer uses reflection:
//
//   - Basic types and fmt.Stringer values: their string form
//   - Slices/arrays: recursive serialization of elements
//   - Maps: pairs sorted for deterministic output
//   - Structs: exported fields with name:value pairs
//   - Functions and channels: type name only, since addresses are not stable across processes
//   - Anything else: JSON
package cache
