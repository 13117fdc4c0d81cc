package provider

import (
	"context"
	"slices"

	"cryptoquote/internal/rates"
)

var (
	_ RateFeed         = (*StaticRateFeed)(nil)
	_ CountryDirectory = (*StaticDirectory)(nil)
)

// StaticRateFeed serves a fixed rate list. Used for offline mode and tests.
type StaticRateFeed struct {
	entries []rates.Entry
	err     error
}

// NewStaticRateFeed creates a feed that always returns entries.
func NewStaticRateFeed(entries ...rates.Entry) *StaticRateFeed {
	return &StaticRateFeed{entries: slices.Clone(entries)}
}

// NewFailingRateFeed creates a feed that always returns err.
func NewFailingRateFeed(err error) *StaticRateFeed {
	return &StaticRateFeed{err: err}
}

// FetchRates returns the configured entries or error.
func (f *StaticRateFeed) FetchRates(_ context.Context) ([]rates.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return slices.Clone(f.entries), nil
}

// StaticDirectory serves a fixed country list.
type StaticDirectory struct {
	countries []Country
}

// NewStaticDirectory creates a directory over countries.
func NewStaticDirectory(countries ...Country) *StaticDirectory {
	return &StaticDirectory{countries: slices.Clone(countries)}
}

// Countries returns the configured list.
func (d *StaticDirectory) Countries(_ context.Context) ([]Country, error) {
	return slices.Clone(d.countries), nil
}
