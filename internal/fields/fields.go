// Package fields defines the purchase form vocabulary: the ordered field keys,
// the immutable field set and the reference lists the form is seeded from.
package fields

import (
	"slices"
	"strings"
)

// Key identifies a form field. The string values are part of the outbound
// redirect contract and must not change.
type Key string

// Form field keys.
const (
	FullName     Key = "client_fullName"
	Email        Key = "client_email"
	PhoneNum     Key = "client_phoneNum"
	IDNum        Key = "client_idNum"
	BillAddress1 Key = "client_billAddress1"
	BillAddress2 Key = "client_billAddress2"
	BillCity     Key = "client_billCity"
	BillZipcode  Key = "client_billZipcode"
	BillState    Key = "client_billState"
	BillCountry  Key = "client_billCountry"
	Currency     Key = "currency"
	Crypto       Key = "cryptocurrency"
	FiatAmount   Key = "fiat_amount"
	CryptoAmount Key = "crypto_amount"
	AffiliateID  Key = "client_affiliateId"
	CryptoWallet Key = "crypto_wallet"
)

// keyOrder is the defined key order used for iteration and encoding.
var keyOrder = []Key{
	FullName,
	Email,
	PhoneNum,
	IDNum,
	BillAddress1,
	BillAddress2,
	BillCity,
	BillZipcode,
	BillState,
	BillCountry,
	Currency,
	Crypto,
	FiatAmount,
	CryptoAmount,
	AffiliateID,
	CryptoWallet,
}

// CountrySentinel is the placeholder the country select shows before a
// country is chosen. It is never stored in a Set.
const CountrySentinel = "Country"

// Keys returns all field keys in their defined order.
func Keys() []Key {
	return slices.Clone(keyOrder)
}

// Valid reports whether k belongs to the form vocabulary.
func (k Key) Valid() bool {
	return slices.Contains(keyOrder, k)
}

// Derived reports whether k is computed by the engine and not user-settable.
func (k Key) Derived() bool {
	return k == CryptoAmount
}

// Set is an immutable mapping from field key to value. Updates return a new Set.
type Set struct {
	values map[Key]string
}

// NewSet builds a Set from the given values. Unknown keys are dropped.
func NewSet(values map[Key]string) Set {
	s := Set{values: make(map[Key]string, len(keyOrder))}
	for k, v := range values {
		if k.Valid() {
			s.values[k] = v
		}
	}
	return s
}

// Get returns the value stored for k, or "" when absent.
func (s Set) Get(k Key) string {
	return s.values[k]
}

// With returns a copy of s with k set to v.
func (s Set) With(k Key, v string) Set {
	next := Set{values: make(map[Key]string, len(keyOrder))}
	for key, val := range s.values {
		next.values[key] = val
	}
	next.values[k] = v
	return next
}

// Each calls fn for every key in the defined order.
func (s Set) Each(fn func(k Key, v string)) {
	for _, k := range keyOrder {
		fn(k, s.values[k])
	}
}

// Map returns a plain copy of the set keyed by field name.
func (s Set) Map() map[string]string {
	out := make(map[string]string, len(keyOrder))
	for _, k := range keyOrder {
		out[string(k)] = s.values[k]
	}
	return out
}

// BillingCountry returns the chosen billing country, or false when none is chosen.
func (s Set) BillingCountry() (string, bool) {
	c := s.values[BillCountry]
	if c == "" {
		return "", false
	}
	return c, true
}

// NormalizeCountry maps the select placeholder to "no country".
func NormalizeCountry(v string) string {
	if strings.TrimSpace(v) == CountrySentinel {
		return ""
	}
	return v
}
