package provider

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var _ CountryDirectory = (*RegionDirectory)(nil)

// RegionDirectory lists ISO 3166-1 countries by their English display name.
// Country ids are the alpha-2 codes.
type RegionDirectory struct {
	once      sync.Once
	countries []Country
}

// NewRegionDirectory creates a RegionDirectory. The list is built on first use.
func NewRegionDirectory() *RegionDirectory {
	return &RegionDirectory{}
}

// Countries returns the countries sorted by name.
func (d *RegionDirectory) Countries(_ context.Context) ([]Country, error) {
	d.once.Do(func() {
		d.countries = buildCountries()
	})
	out := make([]Country, len(d.countries))
	copy(out, d.countries)
	return out, nil
}

func buildCountries() []Country {
	namer := display.English.Regions()
	seen := make(map[string]struct{})
	var out []Country

	for a := 'A'; a <= 'Z'; a++ {
		for b := 'A'; b <= 'Z'; b++ {
			code := string([]rune{a, b})
			region, err := language.ParseRegion(code)
			if err != nil || !region.IsCountry() || region.IsPrivateUse() {
				continue
			}
			// deprecated codes canonicalize to another region
			if region.Canonicalize().String() != code {
				continue
			}
			name := namer.Name(region)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, Country{ID: code, Name: name})
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
