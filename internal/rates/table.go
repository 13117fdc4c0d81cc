// Package rates holds the snapshot of asset-to-USD exchange rates used for quoting.
package rates

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FallbackRate is returned for any symbol without a usable rate.
var FallbackRate = decimal.NewFromInt(1)

// Bounds on accepted decimal input. Anything larger would make quote
// arithmetic grow without limit.
const (
	maxDecimalLen    = 64
	maxDecimalDigits = 32
	maxDecimalScale  = 32
)

// ParseDecimal parses a trimmed decimal string. It reports false for empty,
// malformed or out-of-scale input, including exponents beyond ±32 and more
// than 32 significant digits.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > maxDecimalLen {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	if exp := d.Exponent(); exp > maxDecimalScale || exp < -maxDecimalScale {
		return decimal.Zero, false
	}
	if d.NumDigits() > maxDecimalDigits {
		return decimal.Zero, false
	}
	return d, true
}

// Entry is a raw rate as delivered by a rate feed.
type Entry struct {
	Symbol    string `json:"symbol"`
	RateInUSD string `json:"rateUsd"`
}

// Table is an immutable snapshot of symbol -> USD rate.
// A nil *Table is unloaded and answers every lookup with FallbackRate.
type Table struct {
	rates map[string]decimal.Decimal
}

// Load builds a new Table from raw entries. Entries with an empty symbol or a
// rate that does not parse as a positive decimal are discarded. When a symbol
// repeats, the first usable entry wins.
func Load(entries []Entry) *Table {
	t := &Table{rates: make(map[string]decimal.Decimal, len(entries))}
	for _, e := range entries {
		symbol := strings.TrimSpace(e.Symbol)
		if symbol == "" {
			continue
		}
		if _, seen := t.rates[symbol]; seen {
			continue
		}
		rate, ok := ParseDecimal(e.RateInUSD)
		if !ok || !rate.IsPositive() {
			continue
		}
		t.rates[symbol] = rate
	}
	return t
}

// Lookup returns the USD rate for symbol, or FallbackRate when the symbol is
// absent or the table is unloaded.
func (t *Table) Lookup(symbol string) decimal.Decimal {
	if t == nil {
		return FallbackRate
	}
	if r, ok := t.rates[symbol]; ok {
		return r
	}
	return FallbackRate
}

// Loaded reports whether the table was built from a feed response.
func (t *Table) Loaded() bool {
	return t != nil
}

// Len returns the number of usable rates.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rates)
}
