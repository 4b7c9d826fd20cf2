package loadercache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/singleflight"

	"github.com/mpapenbr/f1-dashboard-service/log"
	"github.com/mpapenbr/f1-dashboard-service/pkg/utils/cache"
)

// based on github.com/kittpat1413/go-common/framework/cache/localcache/localcache.go
//
// Entries are never evicted on expiry. An expired entry is reloaded on access
// and served as last-known-good value when the reload fails.

type (
	Option[K comparable, V any] func(*config[K, V])
	item[T any]                 struct {
		data      T
		fetchedAt time.Time
	}
	LoaderFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)
	config[K comparable, V any]     struct {
		name       string
		expiration time.Duration
		loader     LoaderFunc[K, V]
		now        func() time.Time
		l          *log.Logger
	}
	loaderCache[K comparable, V any] struct {
		mutex   sync.Mutex
		items   map[K]item[V]
		config  *config[K, V]
		group   singleflight.Group
		metrics *cacheMetrics
	}
	cacheMetrics struct {
		hits   metric.Int64Counter
		misses metric.Int64Counter
		stale  metric.Int64Counter
		attrs  metric.MeasurementOption
	}
)

func WithExpiration[K comparable, V any](expiration time.Duration) Option[K, V] {
	return func(c *config[K, V]) {
		c.expiration = expiration
	}
}

func WithLoader[K comparable, V any](lf LoaderFunc[K, V]) Option[K, V] {
	return func(c *config[K, V]) {
		c.loader = lf
	}
}

func WithLogger[K comparable, V any](arg *log.Logger) Option[K, V] {
	return func(c *config[K, V]) {
		c.l = arg
	}
}

// WithClock replaces time.Now, mainly for tests
func WithClock[K comparable, V any](now func() time.Time) Option[K, V] {
	return func(c *config[K, V]) {
		c.now = now
	}
}

// WithName is used as attribute value for the cache metrics
func WithName[K comparable, V any](name string) Option[K, V] {
	return func(c *config[K, V]) {
		c.name = name
	}
}

func New[K comparable, V any](opts ...Option[K, V]) cache.Cache[K, V] {
	c := &config[K, V]{
		name:       "default",
		expiration: 5 * time.Minute,
		now:        time.Now,
		l:          log.Default().Named("cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return &loaderCache[K, V]{
		mutex:   sync.Mutex{},
		items:   make(map[K]item[V]),
		config:  c,
		metrics: newCacheMetrics(c.name, c.l),
	}
}

func newCacheMetrics(name string, l *log.Logger) *cacheMetrics {
	meter := otel.GetMeterProvider().Meter("f1d.cache")
	m := &cacheMetrics{
		attrs: metric.WithAttributes(attribute.String("cache", name)),
	}
	var err error
	if m.hits, err = meter.Int64Counter("f1d.cache.hits",
		metric.WithDescription("Number of requests served from a fresh entry"),
		metric.WithUnit("{count}")); err != nil {
		l.Error("failed to register metric", log.ErrorField(err))
	}
	if m.misses, err = meter.Int64Counter("f1d.cache.misses",
		metric.WithDescription("Number of requests passed to the loader"),
		metric.WithUnit("{count}")); err != nil {
		l.Error("failed to register metric", log.ErrorField(err))
	}
	if m.stale, err = meter.Int64Counter("f1d.cache.stale",
		metric.WithDescription("Number of failed loads answered with an expired entry"),
		metric.WithUnit("{count}")); err != nil {
		l.Error("failed to register metric", log.ErrorField(err))
	}
	return m
}

func (m *cacheMetrics) add(ctx context.Context, c metric.Int64Counter) {
	if c != nil {
		c.Add(ctx, 1, m.attrs)
	}
}

func (c *loaderCache[K, V]) Get(ctx context.Context, key K) (V, error) {
	c.mutex.Lock()
	cacheItem, ok := c.items[key]
	c.mutex.Unlock()

	if ok && c.config.now().Sub(cacheItem.fetchedAt) < c.config.expiration {
		c.metrics.add(ctx, c.metrics.hits)
		return cacheItem.data, nil
	}
	c.metrics.add(ctx, c.metrics.misses)

	v, err := c.load(ctx, key)
	if err == nil {
		return v, nil
	}
	if ok {
		c.config.l.Warn("serving expired entry after failed load",
			log.Any("key", key),
			log.Time("fetchedAt", cacheItem.fetchedAt),
			log.ErrorField(err))
		c.metrics.add(ctx, c.metrics.stale)
		return cacheItem.data, nil
	}
	var zero V
	return zero, err
}

func (c *loaderCache[K, V]) load(ctx context.Context, key K) (V, error) {
	var zero V
	if c.config.loader == nil {
		return zero, cache.ErrCacheMiss
	}
	res, err, _ := c.group.Do(fmt.Sprint(key), func() (any, error) {
		c.config.l.Debug("loaderCache.load", log.Any("key", key))
		v, err := c.config.loader(ctx, key)
		if err != nil {
			c.config.l.Error("error loading entry",
				log.Any("key", key), log.ErrorField(err))
			return nil, err
		}
		c.mutex.Lock()
		c.items[key] = item[V]{data: v, fetchedAt: c.config.now()}
		c.mutex.Unlock()
		return v, nil
	})
	if err != nil {
		return zero, err
	}
	//nolint:forcetypeassert // type is guaranteed by the loader
	return res.(V), nil
}

func (c *loaderCache[K, V]) Invalidate(ctx context.Context, key K) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.config.l.Debug("Invalidate", log.Any("key", key))

	delete(c.items, key)
	c.config.l.Debug("Invalidate", log.Int("remain items", len(c.items)))
}

func (c *loaderCache[K, V]) InvalidateAll(ctx context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.config.l.Debug("InvalidateAll", log.Int("items", len(c.items)))
	c.items = make(map[K]item[V])
}
