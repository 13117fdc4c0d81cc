package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"cryptoquote/internal/rates"
)

// updatedAtField marks a populated cache hash, so an empty feed response is
// cached as empty instead of looking like a miss.
const updatedAtField = "_updated_at"

// CachedRateFeed wraps a RateFeed with a Redis hash of symbol -> rate.
type CachedRateFeed struct {
	feed     RateFeed
	cache    *redis.Client
	ttl      time.Duration
	feedName string
}

var _ RateFeed = (*CachedRateFeed)(nil)

// NewCachedRateFeed creates a new CachedRateFeed.
func NewCachedRateFeed(feed RateFeed, cache *redis.Client, ttl time.Duration, feedName string) *CachedRateFeed {
	return &CachedRateFeed{
		feed:     feed,
		cache:    cache,
		ttl:      ttl,
		feedName: feedName,
	}
}

func (p *CachedRateFeed) cacheKey() string {
	return fmt.Sprintf("ratefeed_cache:{%s}", p.feedName)
}

// FetchRates serves from cache when populated, otherwise calls the wrapped feed.
func (p *CachedRateFeed) FetchRates(ctx context.Context) ([]rates.Entry, error) {
	if p.cache == nil {
		return p.feed.FetchRates(ctx)
	}

	if entries, ok := p.cached(ctx); ok {
		return entries, nil
	}

	return p.Refresh(ctx)
}

// Refresh bypasses the cache, fetches from the wrapped feed and stores the
// result. Feed errors are not cached.
func (p *CachedRateFeed) Refresh(ctx context.Context) ([]rates.Entry, error) {
	entries, err := p.feed.FetchRates(ctx)
	if err != nil {
		return nil, err
	}
	if p.cache == nil {
		return entries, nil
	}

	values := make([]any, 0, 2*len(entries)+2)
	values = append(values, updatedAtField, time.Now().UTC().Format(time.RFC3339))
	for _, e := range entries {
		if e.Symbol == "" || strings.HasPrefix(e.Symbol, "_") {
			continue
		}
		values = append(values, e.Symbol, e.RateInUSD)
	}

	key := p.cacheKey()
	pipe := p.cache.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, values...)
	pipe.Expire(ctx, key, p.ttl)
	_, _ = pipe.Exec(ctx)

	return entries, nil
}

func (p *CachedRateFeed) cached(ctx context.Context) ([]rates.Entry, bool) {
	vals, err := p.cache.HGetAll(ctx, p.cacheKey()).Result()
	if err != nil || len(vals) == 0 {
		return nil, false
	}
	if _, ok := vals[updatedAtField]; !ok {
		return nil, false
	}

	entries := make([]rates.Entry, 0, len(vals)-1)
	for symbol, rate := range vals {
		if symbol == updatedAtField {
			continue
		}
		entries = append(entries, rates.Entry{Symbol: symbol, RateInUSD: rate})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Symbol < entries[j].Symbol })
	return entries, true
}
