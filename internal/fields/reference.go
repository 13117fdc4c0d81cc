package fields

import "slices"

// Asset is a selectable fiat currency or cryptocurrency.
type Asset struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// References holds the selectable fiat and base crypto lists.
type References struct {
	Fiat   []Asset
	Crypto []Asset
}

// DefaultReferences returns the lists the form ships with.
func DefaultReferences() References {
	return References{
		Fiat:   []Asset{{ID: 4, Name: "EUR"}},
		Crypto: []Asset{{ID: 0, Name: "BTC"}},
	}
}

// Defaults returns the initial field set: every field empty except the
// currency and cryptocurrency, preset to the first reference entries, and
// the affiliate id carried in from the inbound request.
func Defaults(refs References, affiliateID string) Set {
	s := NewSet(nil)
	for _, k := range keyOrder {
		s.values[k] = ""
	}
	if len(refs.Fiat) > 0 {
		s.values[Currency] = refs.Fiat[0].Name
	}
	if len(refs.Crypto) > 0 {
		s.values[Crypto] = refs.Crypto[0].Name
	}
	s.values[AffiliateID] = affiliateID
	return s
}

// ContainsAsset reports whether list has an asset named name.
func ContainsAsset(list []Asset, name string) bool {
	return slices.ContainsFunc(list, func(a Asset) bool { return a.Name == name })
}
