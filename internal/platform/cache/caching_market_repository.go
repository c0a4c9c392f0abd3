// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"signal_backend/internal/feature/signals/domain/entity"
	"signal_backend/internal/feature/signals/domain/instrument"
	"signal_backend/internal/feature/signals/usecase"
)

// CachingMarketRepository decorates a MarketRepository with Redis caching.
// Entries expire at the next bar boundary of their timeframe, so a cached
// series never hides a freshly closed bar.
type CachingMarketRepository struct {
	inner     usecase.MarketRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
	now       func() time.Time
}

var _ usecase.MarketRepository = (*CachingMarketRepository)(nil)

// NewCachingMarketRepository decorates a MarketRepository with Redis caching.
// ttl applies to timeframes with no known bar length; if 0 it defaults to
// 5 minutes. If namespace is empty, it uses "bars".
func NewCachingMarketRepository(rdb *redis.Client, ttl time.Duration, inner usecase.MarketRepository, namespace string) *CachingMarketRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "bars"
	}
	return &CachingMarketRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
		now:       time.Now,
	}
}

// GetTimeSeries returns bars from the cache, falling back to the provider.
func (c *CachingMarketRepository) GetTimeSeries(ctx context.Context, symbol string, tf entity.Timeframe, outputsize int) ([]entity.Bar, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.GetTimeSeries(ctx, symbol, tf, outputsize)
	}

	key := c.cacheKey(symbol, tf, outputsize)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		if out, err := decodeBars(b); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to provider
	out, err := c.inner.GetTimeSeries(ctx, symbol, tf, outputsize)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := encodeBars(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttlFor(tf)).Err()
	}

	return out, nil
}

// Invalidate drops every cached series of symbol.
func (c *CachingMarketRepository) Invalidate(ctx context.Context, symbol string) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.cacheKeyPrefix(symbol)+"*")
}

func (c *CachingMarketRepository) ttlFor(tf entity.Timeframe) time.Duration {
	if d := TimeUntilNextBar(tf, c.now()); d > 0 {
		return d
	}
	return c.ttl
}

// cacheKey generates a cache key for a specific query.
func (c *CachingMarketRepository) cacheKey(symbol string, tf entity.Timeframe, outputsize int) string {
	return fmt.Sprintf("%s%s:%d", c.cacheKeyPrefix(symbol), safe(string(tf)), outputsize)
}

// cacheKeyPrefix generates a prefix for invalidating related cache entries.
func (c *CachingMarketRepository) cacheKeyPrefix(symbol string) string {
	return fmt.Sprintf("%s:%s:", c.namespace, safe(instrument.Normalize(symbol)))
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingMarketRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}

// cachedBar mirrors entity.Bar with nullable prices, since JSON has no NaN.
type cachedBar struct {
	Time   time.Time `json:"t"`
	Open   *float64  `json:"o"`
	High   *float64  `json:"h"`
	Low    *float64  `json:"l"`
	Close  *float64  `json:"c"`
	Volume float64   `json:"v"`
}

func encodeBars(bars []entity.Bar) ([]byte, error) {
	out := make([]cachedBar, len(bars))
	for i, b := range bars {
		out[i] = cachedBar{
			Time:   b.Time,
			Open:   finite(b.Open),
			High:   finite(b.High),
			Low:    finite(b.Low),
			Close:  finite(b.Close),
			Volume: b.Volume,
		}
		if math.IsNaN(b.Volume) || math.IsInf(b.Volume, 0) {
			out[i].Volume = 0
		}
	}
	return json.Marshal(out)
}

func decodeBars(b []byte) ([]entity.Bar, error) {
	var in []cachedBar
	if err := json.Unmarshal(b, &in); err != nil {
		return nil, err
	}
	out := make([]entity.Bar, len(in))
	for i, cb := range in {
		out[i] = entity.Bar{
			Time:   cb.Time,
			Open:   orNaN(cb.Open),
			High:   orNaN(cb.High),
			Low:    orNaN(cb.Low),
			Close:  orNaN(cb.Close),
			Volume: cb.Volume,
		}
	}
	return out, nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}
