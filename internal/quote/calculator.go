// Package quote converts a fiat amount into the cryptocurrency amount offered
// to the buyer, including the service markup.
package quote

import (
	"github.com/shopspring/decimal"

	"cryptoquote/internal/rates"
)

// Precision is the number of decimal places of a quoted crypto amount.
const Precision int32 = 7

// divisionPrecision is the scale of the reported unrounded quotient.
const divisionPrecision int32 = 16

// DefaultMarkup is the service margin added to the crypto rate (5%).
var DefaultMarkup = decimal.RequireFromString("0.05")

// Quote is the derived conversion for the current fiat amount and assets.
type Quote struct {
	FiatAmountInUSD     decimal.Decimal
	EffectiveCryptoRate decimal.Decimal
	// CryptoAmountInUSD is the unrounded quotient of the USD amount and the
	// marked-up crypto rate.
	CryptoAmountInUSD decimal.Decimal
	CryptoAmount      decimal.Decimal
}

// Display renders the crypto amount with fixed precision. The same string is
// shown to the buyer and submitted as crypto_amount.
func (q Quote) Display() string {
	return q.CryptoAmount.StringFixed(Precision)
}

// ParseAmount parses a user-entered fiat amount. It reports false for empty,
// non-numeric or out-of-scale input such as "1e5000000".
func ParseAmount(s string) (decimal.Decimal, bool) {
	return rates.ParseDecimal(s)
}

// Compute derives the full quote. Empty, non-numeric, zero or negative
// amounts and non-positive rates yield a zero quote.
func Compute(fiatAmount string, fiatRate, cryptoRate, markup decimal.Decimal) Quote {
	amount, ok := ParseAmount(fiatAmount)
	if !ok || !amount.IsPositive() || !fiatRate.IsPositive() || !cryptoRate.IsPositive() {
		return Quote{}
	}

	effective := cryptoRate.Mul(decimal.NewFromInt(1).Add(markup))
	if !effective.IsPositive() {
		return Quote{}
	}

	inUSD := amount.Mul(fiatRate)
	// rounded straight from the exact quotient, never from the 16-place one
	return Quote{
		FiatAmountInUSD:     inUSD,
		EffectiveCryptoRate: effective,
		CryptoAmountInUSD:   inUSD.DivRound(effective, divisionPrecision),
		CryptoAmount:        inUSD.DivRound(effective, Precision),
	}
}

// ComputeCryptoAmount returns only the rounded crypto amount of Compute.
func ComputeCryptoAmount(fiatAmount string, fiatRate, cryptoRate, markup decimal.Decimal) decimal.Decimal {
	return Compute(fiatAmount, fiatRate, cryptoRate, markup).CryptoAmount
}

// Calculator quotes against a rate table with a fixed markup.
type Calculator struct {
	Markup decimal.Decimal
}

// NewCalculator creates a Calculator with the given markup.
func NewCalculator(markup decimal.Decimal) Calculator {
	return Calculator{Markup: markup}
}

// Quote looks up both rates in tbl (falling back to 1) and computes the quote.
func (c Calculator) Quote(tbl *rates.Table, fiatAmount, currency, crypto string) Quote {
	return Compute(fiatAmount, tbl.Lookup(currency), tbl.Lookup(crypto), c.Markup)
}
