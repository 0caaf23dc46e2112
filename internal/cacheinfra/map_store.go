package cacheinfra

import (
	"context"
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
)

// mapStore is an unbounded store. Entries stay until they are deleted, so a
// cached value survives any outage of the source it was fetched from.
type mapStore struct {
	entries *xsync.MapOf[string, any]
}

// NewMapStore creates an empty unbounded store.
func NewMapStore() *mapStore {
	return &mapStore{entries: xsync.NewMapOf[string, any]()}
}

// GetOrFetch returns the stored value or runs fetchFn and stores its result.
// Failed fetches store nothing. Concurrent misses may fetch more than once;
// the last result wins.
func (m *mapStore) GetOrFetch(ctx context.Context, key string, fetchFn any) (any, error) {
	if value, ok := m.entries.Load(key); ok {
		return value, nil
	}

	if err := validateFetchFn(fetchFn); err != nil {
		return nil, err
	}
	value, err := callFetchFunction(ctx, fetchFn)
	if err != nil {
		return nil, err
	}
	m.entries.Store(key, value)
	return value, nil
}

func (m *mapStore) Delete(ctx context.Context, key string) error {
	m.entries.Delete(key)
	return nil
}

func (m *mapStore) DeleteByPrefix(ctx context.Context, prefix string) error {
	var keys []string
	m.entries.Range(func(key string, _ any) bool {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
		return true
	})
	for _, key := range keys {
		m.entries.Delete(key)
	}
	return nil
}

func (m *mapStore) InvalidateKeys(ctx context.Context, keys []string) error {
	for _, key := range keys {
		m.entries.Delete(key)
	}
	return nil
}

// Size returns the number of stored entries.
func (m *mapStore) Size() int {
	return m.entries.Size()
}
