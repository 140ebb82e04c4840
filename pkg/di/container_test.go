package di

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-collection-cache/cache"
	"github.com/goliatone/go-collection-cache/collectioncache"
	"github.com/goliatone/go-collection-cache/internal/cacheinfra"
	"github.com/goliatone/go-collection-cache/internal/demo"
)

func openDB(t testing.TB, companies, perCompany int) *bun.DB {
	t.Helper()
	ctx := context.Background()

	db, err := demo.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := demo.CreateSchema(ctx, db); err != nil {
		t.Fatalf("CreateSchema() failed: %v", err)
	}
	if err := demo.Seed(ctx, db, companies, perCompany); err != nil {
		t.Fatalf("Seed() failed: %v", err)
	}
	return db
}

func TestNewContainer(t *testing.T) {
	config := cache.Config{
		Capacity:           1000,
		NumShards:          16,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}

	container, err := NewContainer(config, openDB(t, 0, 0))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	if container.Store() == nil {
		t.Error("Container should have a non-nil store")
	}
	if container.Proxy() == nil {
		t.Error("Container should have a non-nil proxy")
	}
	if container.KeySerializer() == nil {
		t.Error("Container should have a non-nil key serializer")
	}
	if container.Metrics() != nil {
		t.Error("Metrics should be nil without a registerer")
	}
	if _, ok := container.Store().(*cacheinfra.SturdycStore); !ok {
		t.Errorf("Expected a sturdyc store, got %T", container.Store())
	}

	stored := container.Config()
	if stored.Capacity != config.Capacity {
		t.Errorf("Expected capacity %d, got %d", config.Capacity, stored.Capacity)
	}
	if stored.TTL != config.TTL {
		t.Errorf("Expected TTL %v, got %v", config.TTL, stored.TTL)
	}
}

func TestNewContainerWithDefaults(t *testing.T) {
	container, err := NewContainerWithDefaults(openDB(t, 0, 0))
	if err != nil {
		t.Fatalf("NewContainerWithDefaults() failed: %v", err)
	}

	config := container.Config()
	defaults := cache.DefaultConfig()
	if config.Capacity != defaults.Capacity {
		t.Errorf("Expected default capacity %d, got %d", defaults.Capacity, config.Capacity)
	}
	if config.TTL != defaults.TTL {
		t.Errorf("Expected default TTL %v, got %v", defaults.TTL, config.TTL)
	}
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	invalid := cache.Config{
		Capacity:           0,
		NumShards:          16,
		TTL:                5 * time.Minute,
		EvictionPercentage: 10,
	}

	_, err := NewContainer(invalid, openDB(t, 0, 0))
	if err == nil {
		t.Fatal("NewContainer() should fail with invalid config")
	}
	if want := "config error in field Capacity: must be greater than 0"; err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}

func TestNewContainer_Redis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer client.Close()

	// the store config is ignored for redis, so an invalid one is accepted
	container, err := NewContainer(cache.Config{}, openDB(t, 0, 0), WithRedis(client))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}
	if _, ok := container.Store().(*cacheinfra.RedisStore); !ok {
		t.Errorf("Expected a redis store, got %T", container.Store())
	}
}

func TestContainerSingletonBehavior(t *testing.T) {
	types := collectioncache.NewTypeRegistry()
	container, err := NewContainer(cache.DefaultConfig(), openDB(t, 0, 0), WithTypes(types))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	if container.Proxy() != container.Proxy() {
		t.Error("Proxy() should return the same instance")
	}
	if container.Store() != container.Store() {
		t.Error("Store() should return the same instance")
	}
	if container.Types() != types {
		t.Error("Types() should return the registry passed with WithTypes")
	}
	if container.Proxy().Types() != types {
		t.Error("Proxy should share the container type registry")
	}
	if container.Registry() != container.Proxy().Registry() {
		t.Error("Registry() should be the proxy blueprint registry")
	}
}

func TestContainerMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	container, err := NewContainer(cache.DefaultConfig(), openDB(t, 0, 0), WithRegisterer(reg))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	metrics := container.Metrics()
	if metrics == nil {
		t.Fatal("Metrics should be registered")
	}

	ctx := context.Background()
	subject := collectioncache.Class(demo.CompanyType)
	fn := func(ctx context.Context, s collectioncache.Subject) (any, error) { return 7, nil }

	for i := 0; i < 3; i++ {
		if _, err := container.Proxy().Fetch(ctx, subject, "lucky", collectioncache.Options{}, fn); err != nil {
			t.Fatalf("Fetch() failed: %v", err)
		}
	}

	if got := testutil.ToFloat64(metrics.Requests.WithLabelValues("fetch", "miss")); got != 1 {
		t.Errorf("Expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.Requests.WithLabelValues("fetch", "hit")); got != 2 {
		t.Errorf("Expected 2 hits, got %v", got)
	}
}

func TestNewInvalidatingRepository(t *testing.T) {
	container, err := NewContainer(cache.DefaultConfig(), openDB(t, 0, 0))
	if err != nil {
		t.Fatalf("NewContainer() failed: %v", err)
	}

	ctx := context.Background()
	company := &demo.Company{ID: 1}
	fn := func(ctx context.Context, s collectioncache.Subject) (any, error) { return 3, nil }
	if _, err := container.Proxy().Fetch(ctx, company, "headcount", collectioncache.Options{}, fn); err != nil {
		t.Fatalf("Fetch() failed: %v", err)
	}

	repo := NewInvalidatingRepository[*demo.Employee](container, nil, demo.CompanyType)
	if owners := repo.Owners(); len(owners) != 1 || owners[0] != demo.CompanyType {
		t.Errorf("Expected owners [%s], got %v", demo.CompanyType, owners)
	}
	if err := repo.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate() failed: %v", err)
	}

	key := container.Proxy().Key(company, "headcount", collectioncache.Options{})
	if _, ok, _ := container.Store().Read(ctx, key); ok {
		t.Error("Invalidate should clear the company collections")
	}
}
