package cache

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-accesspoint-cache/internal/cacheinfra"
)

const (
	// StoreMemory keeps entries until they are invalidated. It is the default.
	StoreMemory = "memory"
	// StoreSturdyc bounds the store by capacity and TTL.
	StoreSturdyc = "sturdyc"
)

// Config exposes cache configuration options for consumers of the cache package.
// Capacity, NumShards, TTL, EvictionPercentage and EvictionInterval only apply
// to the sturdyc store.
type Config struct {
	Store              string        `yaml:"store"`
	HashKeys           bool          `yaml:"hash_keys"`
	Capacity           int           `yaml:"capacity"`
	NumShards          int           `yaml:"num_shards"`
	TTL                time.Duration `yaml:"ttl"`
	EvictionPercentage int           `yaml:"eviction_percentage"`
	EvictionInterval   time.Duration `yaml:"eviction_interval"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	cfg := convertFromInternal(cacheinfra.DefaultConfig())
	cfg.Store = StoreMemory
	return cfg
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	bounded := c.Store == StoreSturdyc
	return validation.ValidateStruct(&c,
		validation.Field(&c.Store, validation.In(StoreMemory, StoreSturdyc)),
		validation.Field(&c.Capacity, validation.When(bounded, validation.Required, validation.Min(1))),
		validation.Field(&c.NumShards, validation.When(bounded, validation.Required, validation.Min(1))),
		validation.Field(&c.TTL, validation.When(bounded, validation.Required, validation.Min(time.Nanosecond))),
		validation.Field(&c.EvictionPercentage, validation.When(bounded, validation.Required, validation.Min(1), validation.Max(100))),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
	)
}

// NewCacheService constructs the cache service selected by cfg.Store.
func NewCacheService(cfg Config) (CacheService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Store == StoreSturdyc {
		return cacheinfra.NewSturdycService(cfg.toInternal())
	}
	return cacheinfra.NewMapStore(), nil
}

// NewKeySerializer returns the serializer selected by cfg.HashKeys.
func NewKeySerializer(cfg Config) KeySerializer {
	if cfg.HashKeys {
		return NewHashedKeySerializer(NewDefaultKeySerializer())
	}
	return NewDefaultKeySerializer()
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		TTL:                c.TTL,
		EvictionPercentage: c.EvictionPercentage,
		EvictionInterval:   c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		TTL:                cfg.TTL,
		EvictionPercentage: cfg.EvictionPercentage,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
