// Package provider implements the external collaborators of a form session:
// rate feeds supplying USD exchange rates and the country directory.
package provider

import (
	"context"

	"cryptoquote/internal/rates"
)

// RateFeed fetches the current USD rate of every known asset symbol.
type RateFeed interface {
	FetchRates(ctx context.Context) ([]rates.Entry, error)
}

// Country is a selectable billing country. Name is compared by equality.
type Country struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CountryDirectory lists the selectable billing countries.
type CountryDirectory interface {
	Countries(ctx context.Context) ([]Country, error)
}
