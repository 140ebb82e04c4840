package di

import (
	repository "github.com/goliatone/go-repository-bun"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-collection-cache/bunfinder"
	"github.com/goliatone/go-collection-cache/cache"
	"github.com/goliatone/go-collection-cache/collectioncache"
	"github.com/goliatone/go-collection-cache/repositorycache"
)

// Container wires the backing store, the registries, the bun finder and
// the proxy. Every accessor returns the same instance for the lifetime of
// the container.
type Container struct {
	store         cache.Store
	keySerializer cache.KeySerializer
	types         *collectioncache.TypeRegistry
	proxy         *collectioncache.Proxy
	metrics       *collectioncache.Metrics
	logger        zerolog.Logger
	config        cache.Config
}

type settings struct {
	redis      *redis.Client
	logger     zerolog.Logger
	registerer prometheus.Registerer
	types      *collectioncache.TypeRegistry
}

// Option customizes container wiring.
type Option func(*settings)

// WithRedis stores entries in redis instead of memory. The store config
// is not used in that case.
func WithRedis(client *redis.Client) Option {
	return func(s *settings) { s.redis = client }
}

// WithLogger hands logger to the proxy and finder.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// WithRegisterer enables proxy metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(s *settings) { s.registerer = reg }
}

// WithTypes uses an existing record type registry.
func WithTypes(types *collectioncache.TypeRegistry) Option {
	return func(s *settings) { s.types = types }
}

// NewContainer builds a container whose proxy reloads records from db.
// Without WithRedis entries are kept in a sturdyc store built from config.
func NewContainer(config cache.Config, db bun.IDB, opts ...Option) (*Container, error) {
	s := settings{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(&s)
	}

	var (
		store cache.Store
		err   error
	)
	if s.redis != nil {
		store, err = cache.NewRedisStore(s.redis, collectioncache.NewCodec())
	} else {
		store, err = cache.NewMemoryStore(config)
	}
	if err != nil {
		return nil, err
	}

	if s.types == nil {
		s.types = collectioncache.NewTypeRegistry()
	}

	var metrics *collectioncache.Metrics
	if s.registerer != nil {
		metrics = collectioncache.NewMetrics(s.registerer)
	}

	keySerializer := cache.NewDefaultKeySerializer()
	proxy, err := collectioncache.New(store, bunfinder.New(db, bunfinder.WithLogger(s.logger)),
		collectioncache.WithTypes(s.types),
		collectioncache.WithKeySerializer(keySerializer),
		collectioncache.WithLogger(s.logger),
		collectioncache.WithMetrics(metrics),
	)
	if err != nil {
		return nil, err
	}

	return &Container{
		store:         store,
		keySerializer: keySerializer,
		types:         s.types,
		proxy:         proxy,
		metrics:       metrics,
		logger:        s.logger,
		config:        config,
	}, nil
}

// NewContainerWithDefaults creates a memory-backed container using cache.DefaultConfig.
func NewContainerWithDefaults(db bun.IDB) (*Container, error) {
	return NewContainer(cache.DefaultConfig(), db)
}

// Store returns the backing store the proxy reads and writes.
func (c *Container) Store() cache.Store {
	return c.store
}

// KeySerializer returns the serializer used for key-affecting options.
func (c *Container) KeySerializer() cache.KeySerializer {
	return c.keySerializer
}

// Types returns the record type registry.
func (c *Container) Types() *collectioncache.TypeRegistry {
	return c.types
}

// Registry returns the blueprint registry of the proxy.
func (c *Container) Registry() *collectioncache.Registry {
	return c.proxy.Registry()
}

// Proxy returns the collection cache proxy.
func (c *Container) Proxy() *collectioncache.Proxy {
	return c.proxy
}

// Metrics returns the proxy counters, or nil when no registerer was given.
func (c *Container) Metrics() *collectioncache.Metrics {
	return c.metrics
}

// Config returns a copy of the store configuration.
func (c *Container) Config() cache.Config {
	return c.config
}

// NewInvalidatingRepository wraps base so its writes clear the collections
// of the owners type tags held by the container proxy.
func NewInvalidatingRepository[T any](container *Container, base repository.Repository[T], owners ...string) *repositorycache.InvalidatingRepository[T] {
	return repositorycache.New(base, container.proxy, owners, repositorycache.WithLogger(container.logger))
}
