package provider

import (
	"context"
	"errors"
	"fmt"

	"cryptoquote/internal/rates"
)

var _ RateFeed = (*FeedFacade)(nil)

// FeedFacade calls feeds sequentially and returns the first success.
type FeedFacade struct {
	feeds []RateFeed
}

// NewFeedFacade creates a new FeedFacade over the given feeds.
func NewFeedFacade(feeds ...RateFeed) *FeedFacade {
	return &FeedFacade{
		feeds: feeds,
	}
}

// FetchRates calls feeds in order until one succeeds.
func (p *FeedFacade) FetchRates(ctx context.Context) ([]rates.Entry, error) {
	var errs []error
	for _, feed := range p.feeds {
		entries, err := feed.FetchRates(ctx)
		if err == nil {
			return entries, nil
		}
		errs = append(errs, err)
	}

	return nil, fmt.Errorf("all rate feeds failed: %w", errors.Join(errs...))
}
