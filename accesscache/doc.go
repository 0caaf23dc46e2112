// Package accesscache provides a caching decorator for any access point.
//
// # Overview
//
// CachedAccessPoint wraps an accesspoint.AccessPoint and keeps the results
// of Search in a cache.CacheService. Writes go to the wrapped access point
// and, once they succeed, drop every cached search of that decorator. The
// decorator implements accesspoint.AccessPoint itself, so it can replace the
// wrapped backend anywhere.
//
// # Basic Usage
//
//	base, _ := memory.New(schema, "id")
//	svc, _ := cache.NewCacheService(cache.DefaultConfig())
//	cached := accesscache.New(base, svc, cache.NewDefaultKeySerializer())
//
//	items, err := cached.SearchAll(ctx, accesspoint.Criteria{"name": "bar"})
//
// # Caching Behavior
//
//  1. Normalize the criteria (sorted by field, value types kept)
//  2. Build the key: namespace, generation, serialized criteria
//  3. On a hit, return the stored items without calling the backend
//  4. On a miss, search the backend, collect the whole sequence, store it
//
// A hit never touches the backend, so a cached search keeps working while
// the backend is unavailable. A miss propagates the backend error as is
// and stores nothing.
//
// # Invalidation
//
// Save, Delete and DeleteMany invalidate after the backend call succeeds.
// Criteria are opaque filters, so invalidation is global: every cached
// search of the decorator is dropped, whatever the write touched.
//
// Each decorator keeps a generation counter that is part of every key.
// Invalidation increments it under a lock, which makes all older entries
// unreachable at once, and then sweeps them with DeleteByPrefix. A search
// that was in flight during the invalidation stores its result under the
// old generation, where nobody reads it.
//
// # Items
//
// Items returned by the decorator, including those from Create, report the
// decorator as their access point. item.Save and item.Delete therefore go
// through the cache and invalidate it.
//
// # Bypass
//
// WithBypass(ctx) reads from the backend without using or filling the cache.
package accesscache
