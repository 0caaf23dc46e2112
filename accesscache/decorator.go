package accesscache

import (
	"context"
	"iter"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-accesspoint-cache/accesspoint"
	"github.com/goliatone/go-accesspoint-cache/cache"
)

// Interface assertion to ensure CachedAccessPoint implements AccessPoint
var _ accesspoint.AccessPoint = (*CachedAccessPoint)(nil)

// CachedAccessPoint decorates a base access point with a search result cache.
// Every write that succeeds on the base invalidates all cached searches.
type CachedAccessPoint struct {
	base          accesspoint.AccessPoint
	cache         cache.CacheService
	keySerializer cache.KeySerializer
	namespace     string
	logger        *zap.Logger
	recorder      Recorder

	mu         sync.RWMutex
	generation uint64
}

// New creates a CachedAccessPoint that wraps base. The cache starts empty and
// base is not queried until the first search.
func New(base accesspoint.AccessPoint, cacheService cache.CacheService, keySerializer cache.KeySerializer, opts ...Option) *CachedAccessPoint {
	c := &CachedAccessPoint{
		base:          base,
		cache:         cacheService,
		keySerializer: keySerializer,
		logger:        zap.NewNop(),
		recorder:      nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.namespace == "" {
		c.namespace = defaultNamespace(base)
	}
	c.namespace = url.QueryEscape(c.namespace)
	c.logger = c.logger.With(zap.String("namespace", c.namespace))
	return c
}

func defaultNamespace(base accesspoint.AccessPoint) string {
	stem := toSnake(reflect.TypeOf(base).String())
	if stem == "" {
		stem = "access_point"
	}
	return stem + "-" + uuid.NewString()
}

// Unwrap returns the decorated access point.
func (c *CachedAccessPoint) Unwrap() accesspoint.AccessPoint {
	return c.base
}

// Namespace returns the prefix shared by every key this decorator stores.
// It is escaped, so it never contains the key separator.
func (c *CachedAccessPoint) Namespace() string {
	return c.namespace
}

// Generation returns the number of invalidations so far.
func (c *CachedAccessPoint) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

func (c *CachedAccessPoint) Properties() accesspoint.Schema {
	return c.base.Properties()
}

func (c *CachedAccessPoint) IdentityProperties() []string {
	return c.base.IdentityProperties()
}

// Search returns the cached result for criteria, querying the base only on a miss.
func (c *CachedAccessPoint) Search(ctx context.Context, criteria accesspoint.Criteria) (iter.Seq[*accesspoint.Item], error) {
	items, err := c.SearchAll(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return accesspoint.Values(items), nil
}

// SearchAll is Search with a materialized result. The returned slice is a
// copy; the items in it are the cached instances.
func (c *CachedAccessPoint) SearchAll(ctx context.Context, criteria accesspoint.Criteria) ([]*accesspoint.Item, error) {
	if isBypassed(ctx) {
		return c.fetch(ctx, criteria)
	}

	key := c.searchKey(criteria)
	hit := true
	items, err := cache.GetOrFetch(ctx, c.cache, key, func(ctx context.Context) ([]*accesspoint.Item, error) {
		hit = false
		return c.fetch(ctx, criteria)
	})
	if err != nil {
		return nil, err
	}

	if hit {
		c.recorder.Hit(c.namespace)
		c.logger.Debug("accesscache: hit", zap.String("key", key), zap.Int("items", len(items)))
	} else {
		c.recorder.Miss(c.namespace)
		c.logger.Debug("accesscache: miss", zap.String("key", key), zap.Int("items", len(items)))
	}
	return slices.Clone(items), nil
}

// fetch queries the base and materializes the result, adopting every item.
func (c *CachedAccessPoint) fetch(ctx context.Context, criteria accesspoint.Criteria) ([]*accesspoint.Item, error) {
	seq, err := c.base.Search(ctx, criteria)
	if err != nil {
		c.recorder.BackendError(c.namespace)
		c.logger.Debug("accesscache: backend search failed", zap.Error(err))
		return nil, err
	}

	items := slices.Collect(seq)
	for _, item := range items {
		item.Adopt(c)
	}
	return items, nil
}

func (c *CachedAccessPoint) searchKey(criteria accesspoint.Criteria) string {
	c.mu.RLock()
	generation := c.generation
	c.mu.RUnlock()

	return c.namespace + cache.KeySeparator +
		"g" + strconv.FormatUint(generation, 10) + cache.KeySeparator +
		c.keySerializer.SerializeKey("Search", criteria.Normalize())
}

// Open returns the single item matching criteria using the cached search.
func (c *CachedAccessPoint) Open(ctx context.Context, criteria accesspoint.Criteria) (*accesspoint.Item, error) {
	return accesspoint.OpenOne(ctx, c, criteria)
}

// Create builds an unsaved item through the base and binds it to the decorator.
func (c *CachedAccessPoint) Create(fields map[string]any) (*accesspoint.Item, error) {
	item, err := c.base.Create(fields)
	if err != nil {
		return nil, err
	}
	return item.Adopt(c), nil
}

// Save persists item through the base, then invalidates the cache.
func (c *CachedAccessPoint) Save(ctx context.Context, item *accesspoint.Item) error {
	if err := c.base.Save(ctx, item); err != nil {
		return err
	}
	c.invalidate(ctx, "save")
	return nil
}

// Delete removes item through the base, then invalidates the cache.
func (c *CachedAccessPoint) Delete(ctx context.Context, item *accesspoint.Item) error {
	if err := c.base.Delete(ctx, item); err != nil {
		return err
	}
	c.invalidate(ctx, "delete")
	return nil
}

// DeleteMany removes matching items through the base, then invalidates the
// whole cache; the matched subset is unknown to the decorator.
func (c *CachedAccessPoint) DeleteMany(ctx context.Context, criteria accesspoint.Criteria) error {
	if err := c.base.DeleteMany(ctx, criteria); err != nil {
		return err
	}
	c.invalidate(ctx, "delete_many")
	return nil
}

// Invalidate drops every cached search. Use it after changing the backend
// without going through the decorator.
func (c *CachedAccessPoint) Invalidate(ctx context.Context) error {
	return c.invalidate(ctx, "manual")
}

// invalidate moves to a new generation first, so no later read can see an
// old entry, then reclaims the old entries from the store.
func (c *CachedAccessPoint) invalidate(ctx context.Context, reason string) error {
	c.mu.Lock()
	c.generation++
	generation := c.generation
	c.mu.Unlock()

	c.recorder.Invalidation(c.namespace, reason)
	c.logger.Debug("accesscache: invalidated",
		zap.String("reason", reason),
		zap.Uint64("generation", generation),
	)

	if err := c.cache.DeleteByPrefix(ctx, c.namespace+cache.KeySeparator); err != nil {
		c.logger.Warn("accesscache: failed to reclaim stale entries", zap.Error(err))
		return err
	}
	return nil
}
