//nolint:funlen // ok for tests
package loadercache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/f1-dashboard-service/pkg/utils/cache"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type countingLoader struct {
	calls int
	fail  bool
	value string
}

func (l *countingLoader) load(ctx context.Context, key string) (string, error) {
	l.calls++
	if l.fail {
		return "", errors.New("upstream down")
	}
	return key + ":" + l.value, nil
}

func newTestCache(l *countingLoader, clock *testClock) cache.Cache[string, string] {
	return New(
		WithExpiration[string, string](5*time.Second),
		WithLoader(l.load),
		WithClock[string, string](clock.Now),
	)
}

func TestGet_WithinTTL(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 5, 26, 13, 0, 0, 0, time.UTC)}
	loader := &countingLoader{value: "v1"}
	c := newTestCache(loader, clock)

	first, err := c.Get(context.Background(), "laps")
	require.NoError(t, err)

	clock.Advance(4999 * time.Millisecond)
	loader.value = "v2"
	second, err := c.Get(context.Background(), "laps")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, loader.calls)
}

func TestGet_AfterTTL(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 5, 26, 13, 0, 0, 0, time.UTC)}
	loader := &countingLoader{value: "v1"}
	c := newTestCache(loader, clock)

	_, err := c.Get(context.Background(), "laps")
	require.NoError(t, err)

	clock.Advance(5 * time.Second)
	loader.value = "v2"
	got, err := c.Get(context.Background(), "laps")
	require.NoError(t, err)
	assert.Equal(t, "laps:v2", got)
	assert.Equal(t, 2, loader.calls)
}

func TestGet_StaleFallback(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 5, 26, 13, 0, 0, 0, time.UTC)}
	loader := &countingLoader{value: "v1"}
	c := newTestCache(loader, clock)

	_, err := c.Get(context.Background(), "laps")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	loader.fail = true
	got, err := c.Get(context.Background(), "laps")
	require.NoError(t, err)
	assert.Equal(t, "laps:v1", got)
	assert.Equal(t, 2, loader.calls)
}

func TestGet_ErrorWithoutEntry(t *testing.T) {
	clock := &testClock{now: time.Now()}
	loader := &countingLoader{fail: true}
	c := newTestCache(loader, clock)

	_, err := c.Get(context.Background(), "laps")
	assert.EqualError(t, err, "upstream down")
}

func TestGet_NoLoader(t *testing.T) {
	c := New[string, string]()
	_, err := c.Get(context.Background(), "x")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestInvalidate(t *testing.T) {
	clock := &testClock{now: time.Now()}
	loader := &countingLoader{value: "v1"}
	c := newTestCache(loader, clock)
	ctx := context.Background()

	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "b")
	c.Invalidate(ctx, "a")
	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "b")
	assert.Equal(t, 3, loader.calls)

	c.InvalidateAll(ctx)
	_, _ = c.Get(ctx, "a")
	_, _ = c.Get(ctx, "b")
	assert.Equal(t, 5, loader.calls)

	// invalidated entries are gone for the stale fallback as well
	c.InvalidateAll(ctx)
	loader.fail = true
	_, err := c.Get(ctx, "a")
	assert.Error(t, err)
}
