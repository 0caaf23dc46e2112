// Package cache provides the caching interfaces and key serialization used
// by the access point decorator.
//
// # Overview
//
// This package exports two main interfaces and their default implementations:
//
//   - CacheService: read-through storage with prefix invalidation
//   - KeySerializer: builds stable cache keys from method names and arguments
//
// NewCacheService picks the store from Config.Store. The default "memory"
// store keeps entries until they are invalidated, which is what the
// decorator expects: a cached search result must stay available even when
// the backend is down. The "sturdyc" store bounds memory with capacity and
// TTL; expired entries are simply fetched again.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	serializer := cache.NewDefaultKeySerializer()
//	key := serializer.SerializeKey("Search", criteria.Normalize())
//
//	items, err := cache.GetOrFetch(ctx, svc, key, func(ctx context.Context) ([]*accesspoint.Item, error) {
//		return accesspoint.SearchAll(ctx, backend, criteria)
//	})
//
// # Key Serialization Strategy
//
// The default key serializer uses reflection:
//
//   - Maps: sorted key=value pairs, so filter order never matters
//   - Slices/arrays: recursive serialization of elements
//   - Structs: exported fields with name:value pairs
//   - Function pointers and channels: %p formatting, stable within a process
//   - Anything else: JSON fallback
//
// NewHashedKeySerializer wraps another serializer and replaces the argument
// segment with its xxhash digest, keeping keys short for wide filters.
//
// # Invalidation
//
// DeleteByPrefix removes every key starting with a prefix. Decorators put
// their namespace in front of every key, so one shared service can hold the
// entries of many decorators and still clear them one decorator at a time.
package cache
