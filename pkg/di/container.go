package di

import (
	repository "github.com/goliatone/go-repository-bun"
	"go.uber.org/zap"

	"github.com/goliatone/go-accesspoint-cache/accesscache"
	"github.com/goliatone/go-accesspoint-cache/accesspoint"
	"github.com/goliatone/go-accesspoint-cache/bunrepo"
	"github.com/goliatone/go-accesspoint-cache/cache"
)

// Container provides dependency injection for cache related components.
// It holds a single cache service and key serializer shared by every
// decorator it builds; each decorator keeps its own namespace in the store.
type Container struct {
	cacheService  cache.CacheService
	keySerializer cache.KeySerializer
	config        cache.Config
	logger        *zap.Logger
	recorder      accesscache.Recorder
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger handed to every decorator.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		c.logger = logger
	}
}

// WithRecorder sets the metrics recorder handed to every decorator.
func WithRecorder(recorder accesscache.Recorder) Option {
	return func(c *Container) {
		c.recorder = recorder
	}
}

// NewContainer creates a new DI container with the provided cache configuration.
func NewContainer(config cache.Config, opts ...Option) (*Container, error) {
	cacheService, err := cache.NewCacheService(config)
	if err != nil {
		return nil, err
	}

	c := &Container{
		cacheService:  cacheService,
		keySerializer: cache.NewKeySerializer(config),
		config:        config,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewContainerWithDefaults creates a new DI container using default configuration.
func NewContainerWithDefaults(opts ...Option) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), opts...)
}

// CacheService returns the shared cache service.
func (c *Container) CacheService() cache.CacheService {
	return c.cacheService
}

// KeySerializer returns the shared key serializer.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Config returns a copy of the cache configuration used by this container.
func (c *Container) Config() cache.Config {
	return c.config
}

// Logger returns the logger handed to decorators.
func (c *Container) Logger() *zap.Logger {
	return c.logger
}

// NewCachedAccessPoint wraps base with a cache decorator wired to the
// container's service, serializer, logger and recorder. Extra options are
// applied last.
func NewCachedAccessPoint(container *Container, base accesspoint.AccessPoint, opts ...accesscache.Option) *accesscache.CachedAccessPoint {
	all := []accesscache.Option{
		accesscache.WithLogger(container.logger),
		accesscache.WithRecorder(container.recorder),
	}
	return accesscache.New(base, container.cacheService, container.keySerializer, append(all, opts...)...)
}

// NewCachedRepository exposes a bun repository as a cached access point.
//
// Since Go methods cannot have type parameters, this is provided as a package-level function.
// Example: NewCachedRepository[*User](container, userRepository, schema, "id")
func NewCachedRepository[T any](container *Container, repo repository.Repository[T], schema accesspoint.Schema, identity ...string) (*accesscache.CachedAccessPoint, error) {
	base, err := bunrepo.New(repo, schema, identity...)
	if err != nil {
		return nil, err
	}
	return NewCachedAccessPoint(container, base), nil
}
