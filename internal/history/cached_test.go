package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/esgledger/internal/cache"
)

type countingSource struct {
	values []float64
	err    error
	calls  int
}

func (s *countingSource) RecentActivityValues(context.Context, string, string, int) ([]float64, error) {
	s.calls++
	return s.values, s.err
}

type mapCache struct {
	data    map[string][]float64
	getErr  error
	setErr  error
	setKeys []string
}

func newMapCache() *mapCache {
	return &mapCache{data: make(map[string][]float64)}
}

func (c *mapCache) GetSeries(_ context.Context, key SeriesKey) ([]float64, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.data[key.String()]
	return v, ok, nil
}

func (c *mapCache) SetSeries(_ context.Context, key SeriesKey, values []float64) error {
	c.setKeys = append(c.setKeys, key.String())
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key.String()] = values
	return nil
}

func TestSeriesKey(t *testing.T) {
	assert.Equal(t, "history:boiler-1:January:12", SeriesKey{"boiler-1", "January", 12}.String())
}

func TestCachedSource(t *testing.T) {
	ctx := context.Background()

	t.Run("read through", func(t *testing.T) {
		inner := &countingSource{values: []float64{1, 2}}
		c := newMapCache()
		s := NewCachedSource(inner, c)

		for range 3 {
			got, err := s.RecentActivityValues(ctx, "a", "Jan", 12)
			require.NoError(t, err)
			assert.Equal(t, []float64{1, 2}, got)
		}
		assert.Equal(t, 1, inner.calls)
		assert.Equal(t, []string{"history:a:Jan:12"}, c.setKeys)
	})

	t.Run("cache failures bypassed", func(t *testing.T) {
		inner := &countingSource{values: []float64{7}}
		c := newMapCache()
		c.getErr = errors.New("connection refused")
		c.setErr = errors.New("connection refused")
		s := NewCachedSource(inner, c)

		got, err := s.RecentActivityValues(ctx, "a", "Jan", 12)
		require.NoError(t, err)
		assert.Equal(t, []float64{7}, got)
	})

	t.Run("source errors not cached", func(t *testing.T) {
		inner := &countingSource{err: errors.New("db down")}
		c := newMapCache()
		s := NewCachedSource(inner, c)

		_, err := s.RecentActivityValues(ctx, "a", "Jan", 12)
		require.Error(t, err)
		assert.Empty(t, c.setKeys)
	})
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	store, err := cache.NewFileStore(t.TempDir(), time.Hour)
	require.NoError(t, err)
	c := NewFileCache(store)
	key := SeriesKey{SourceID: "a", Period: "Jan", Limit: 12}

	_, ok, err := c.GetSeries(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetSeries(ctx, key, nil))
	got, ok, err := c.GetSeries(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)

	require.NoError(t, c.SetSeries(ctx, key, []float64{3, 2, 1}))
	got, ok, err = c.GetSeries(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float64{3, 2, 1}, got)
}

type fakeRedis struct {
	data map[string]string
	err  error
	ttl  time.Duration
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if f.err != nil {
		return redis.NewStringResult("", f.err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd {
	if f.err != nil {
		return redis.NewStatusResult("", f.err)
	}
	f.data[key] = string(value.([]byte))
	f.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{data: make(map[string]string)}
	c := &RedisCache{client: fake, ttl: 10 * time.Minute}
	key := SeriesKey{SourceID: "a", Period: "Jan", Limit: 12}

	_, ok, err := c.GetSeries(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "redis.Nil is a miss")

	require.NoError(t, c.SetSeries(ctx, key, []float64{5, 4}))
	assert.Equal(t, "[5,4]", fake.data["history:a:Jan:12"])
	assert.Equal(t, 10*time.Minute, fake.ttl)

	got, ok, err := c.GetSeries(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []float64{5, 4}, got)

	fake.err = errors.New("dial tcp: refused")
	_, _, err = c.GetSeries(ctx, key)
	assert.Error(t, err)
	assert.Error(t, c.SetSeries(ctx, key, nil))
}
