package provider

import (
	"context"
	"time"

	"cryptoquote/internal/metrics"
	"cryptoquote/internal/rates"
)

// InstrumentedFeed records prometheus metrics around a RateFeed.
type InstrumentedFeed struct {
	feed RateFeed
	name string
}

var _ RateFeed = (*InstrumentedFeed)(nil)

// NewInstrumentedFeed wraps feed, labelling metrics with name.
func NewInstrumentedFeed(feed RateFeed, name string) *InstrumentedFeed {
	return &InstrumentedFeed{feed: feed, name: name}
}

// FetchRates delegates to the wrapped feed.
func (p *InstrumentedFeed) FetchRates(ctx context.Context) ([]rates.Entry, error) {
	start := time.Now()
	entries, err := p.feed.FetchRates(ctx)
	metrics.ObserveRateFeed(p.name, start, err)
	return entries, err
}
