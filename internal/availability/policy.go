// Package availability decides which cryptocurrencies a buyer may purchase
// based on their billing country.
package availability

import (
	"maps"
	"slices"

	"cryptoquote/internal/fields"
)

// Policy maps a billing country to the ordered list of purchasable assets.
// An empty country means none has been chosen.
type Policy interface {
	Resolve(country string) []fields.Asset
}

// CountryPolicy is a table of per-country asset lists with a fallback list for
// every country without a rule.
type CountryPolicy struct {
	fallback []fields.Asset
	rules    map[string][]fields.Asset
}

var _ Policy = (*CountryPolicy)(nil)

// NewCountryPolicy creates a CountryPolicy. The inputs are copied.
func NewCountryPolicy(fallback []fields.Asset, rules map[string][]fields.Asset) *CountryPolicy {
	p := &CountryPolicy{
		fallback: slices.Clone(fallback),
		rules:    make(map[string][]fields.Asset, len(rules)),
	}
	for country, assets := range rules {
		p.rules[country] = slices.Clone(assets)
	}
	return p
}

// DefaultPolicy returns the production rules: Canada may buy BTC and ETH,
// everyone else BTC only.
func DefaultPolicy() *CountryPolicy {
	btc := fields.Asset{ID: 0, Name: "BTC"}
	eth := fields.Asset{ID: 1, Name: "ETH"}
	return NewCountryPolicy(
		[]fields.Asset{btc},
		map[string][]fields.Asset{
			"Canada": {btc, eth},
		},
	)
}

// Resolve returns a copy of the asset list for country.
func (p *CountryPolicy) Resolve(country string) []fields.Asset {
	if assets, ok := p.rules[country]; ok {
		return slices.Clone(assets)
	}
	return slices.Clone(p.fallback)
}

// WithRule returns a new policy with an extra or replaced country rule.
func (p *CountryPolicy) WithRule(country string, assets []fields.Asset) *CountryPolicy {
	rules := maps.Clone(p.rules)
	if rules == nil {
		rules = map[string][]fields.Asset{}
	}
	rules[country] = assets
	return NewCountryPolicy(p.fallback, rules)
}

// Countries returns the countries with a dedicated rule, sorted.
func (p *CountryPolicy) Countries() []string {
	return slices.Sorted(maps.Keys(p.rules))
}
