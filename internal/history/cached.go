package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rshade/esgledger/internal/cache"
	"github.com/rshade/esgledger/internal/logging"
)

// SeriesKey identifies a cached history read.
type SeriesKey struct {
	SourceID string
	Period   string
	Limit    int
}

// String renders the key as history:{source}:{period}:{limit}.
func (k SeriesKey) String() string {
	return fmt.Sprintf("history:%s:%s:%d", k.SourceID, k.Period, k.Limit)
}

// SeriesCache stores history reads. ok is false on a miss.
type SeriesCache interface {
	GetSeries(ctx context.Context, key SeriesKey) (values []float64, ok bool, err error)
	SetSeries(ctx context.Context, key SeriesKey, values []float64) error
}

// CachedSource reads through a SeriesCache. Cache failures are logged and
// the inner source is used instead; they never fail a read.
type CachedSource struct {
	inner Source
	cache SeriesCache
}

// NewCachedSource wraps inner with c.
func NewCachedSource(inner Source, c SeriesCache) *CachedSource {
	return &CachedSource{inner: inner, cache: c}
}

// RecentActivityValues implements Source.
func (s *CachedSource) RecentActivityValues(ctx context.Context, sourceID, period string, limit int) ([]float64, error) {
	log := logging.ComponentLogger(logging.FromContext(ctx), "history")
	key := SeriesKey{SourceID: sourceID, Period: period, Limit: limit}

	values, ok, err := s.cache.GetSeries(ctx, key)
	switch {
	case err != nil:
		log.Warn().Err(err).Str("key", key.String()).Msg("history cache read failed")
	case ok:
		log.Debug().Str("key", key.String()).Msg("history cache hit")
		return values, nil
	}

	values, err = s.inner.RecentActivityValues(ctx, sourceID, period, limit)
	if err != nil {
		return nil, err
	}

	if err = s.cache.SetSeries(ctx, key, values); err != nil {
		log.Warn().Err(err).Str("key", key.String()).Msg("history cache write failed")
	}
	return values, nil
}

// redisClient is the subset of *redis.Client used by RedisCache.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisCache keeps series as JSON strings in Redis.
type RedisCache struct {
	client redisClient
	ttl    time.Duration
}

// NewRedisCache returns a cache over client whose keys expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// GetSeries implements SeriesCache.
func (c *RedisCache) GetSeries(ctx context.Context, key SeriesKey) ([]float64, bool, error) {
	data, err := c.client.Get(ctx, key.String()).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get series from Redis: %w", err)
	}

	var values []float64
	if err = json.Unmarshal([]byte(data), &values); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal series: %w", err)
	}
	return values, true, nil
}

// SetSeries implements SeriesCache.
func (c *RedisCache) SetSeries(ctx context.Context, key SeriesKey, values []float64) error {
	data, err := json.Marshal(nonNil(values))
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}
	if err = c.client.Set(ctx, key.String(), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set series in Redis: %w", err)
	}
	return nil
}

// FileCache keeps series in a cache.FileStore.
type FileCache struct {
	store *cache.FileStore
}

// NewFileCache returns a SeriesCache over store.
func NewFileCache(store *cache.FileStore) *FileCache {
	return &FileCache{store: store}
}

// GetSeries implements SeriesCache.
func (c *FileCache) GetSeries(_ context.Context, key SeriesKey) ([]float64, bool, error) {
	e, err := c.store.Get(fileKey(key))
	if errors.Is(err, cache.ErrNotFound) || errors.Is(err, cache.ErrExpired) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var values []float64
	if err = e.Decode(&values); err != nil {
		return nil, false, fmt.Errorf("failed to decode series: %w", err)
	}
	return values, true, nil
}

// SetSeries implements SeriesCache.
func (c *FileCache) SetSeries(_ context.Context, key SeriesKey, values []float64) error {
	data, err := json.Marshal(nonNil(values))
	if err != nil {
		return fmt.Errorf("failed to marshal series: %w", err)
	}
	return c.store.Set(fileKey(key), data)
}

func fileKey(k SeriesKey) string {
	return cache.Key("history", k.SourceID, k.Period, strconv.Itoa(k.Limit))
}

// nonNil keeps an empty history cached as [] rather than null.
func nonNil(values []float64) []float64 {
	if values == nil {
		return []float64{}
	}
	return values
}
