// Package validation evaluates the purchase form schema against a field set.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"cryptoquote/internal/fields"
	"cryptoquote/internal/quote"
)

var (
	// WHATWG "valid e-mail address" production.
	emailPattern = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")
	phonePattern = regexp.MustCompile(`^\+?\d+$`)
)

// Check inspects a field value in the context of the whole set and returns an
// error message, or "" when the value passes.
type Check func(value string, set fields.Set) string

// Rule is the ordered list of checks for one field. Only the first failing
// check is reported.
type Rule struct {
	Field  fields.Key
	Checks []Check
}

// Bounds is the inclusive fiat amount range.
type Bounds struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// DefaultBounds is [50, 700].
func DefaultBounds() Bounds {
	return Bounds{Min: decimal.NewFromInt(50), Max: decimal.NewFromInt(700)}
}

// Result maps each failing field to its message.
type Result struct {
	Errors map[fields.Key]string
}

// IsValid reports whether no field has an error.
func (r Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Error returns the message for k, if any.
func (r Result) Error(k fields.Key) (string, bool) {
	msg, ok := r.Errors[k]
	return msg, ok
}

// Engine evaluates a schema.
type Engine struct {
	rules []Rule
}

// NewEngine creates an Engine over the given rules.
func NewEngine(rules ...Rule) *Engine {
	return &Engine{rules: rules}
}

// DefaultEngine returns the purchase form schema with the given amount bounds.
func DefaultEngine(b Bounds) *Engine {
	return NewEngine(
		Rule{Field: fields.FullName, Checks: []Check{Required("Full Name is required")}},
		Rule{Field: fields.Email, Checks: []Check{
			Required("Email is required"),
			Matches(emailPattern, "Invalid email format"),
		}},
		Rule{Field: fields.PhoneNum, Checks: []Check{
			Required("Phone Number is required"),
			Matches(phonePattern, "Invalid phone number format"),
		}},
		Rule{Field: fields.BillAddress1, Checks: []Check{Required("Billing Address 1 is required")}},
		Rule{Field: fields.BillCity, Checks: []Check{Required("Billing City is required")}},
		Rule{Field: fields.BillZipcode, Checks: []Check{Required("Billing Zipcode is required")}},
		Rule{Field: fields.BillCountry, Checks: []Check{RequiredCountry("Billing Country is required")}},
		Rule{Field: fields.Crypto, Checks: []Check{Required("Cryptocurrency is required")}},
		Rule{Field: fields.Currency, Checks: []Check{Required("Currency is required")}},
		Rule{Field: fields.FiatAmount, Checks: []Check{
			Required("Fiat amount is required"),
			Numeric("Fiat amount must be a number"),
			AtLeast(b.Min, "Minimum fiat amount allowed is"),
			AtMost(b.Max, "Maximum fiat amount allowed is"),
		}},
		Rule{Field: fields.CryptoWallet, Checks: []Check{Required("Crypto wallet is required")}},
	)
}

// Validate evaluates every rule independently.
func (e *Engine) Validate(set fields.Set) Result {
	res := Result{Errors: make(map[fields.Key]string)}
	for _, r := range e.rules {
		if msg := evaluate(r, set); msg != "" {
			res.Errors[r.Field] = msg
		}
	}
	return res
}

// validateField evaluates only the rule for k.
func (e *Engine) validateField(set fields.Set, k fields.Key) (string, bool) {
	for _, r := range e.rules {
		if r.Field == k {
			msg := evaluate(r, set)
			return msg, msg != ""
		}
	}
	return "", false
}

func evaluate(r Rule, set fields.Set) string {
	v := set.Get(r.Field)
	for _, c := range r.Checks {
		if msg := c(v, set); msg != "" {
			return msg
		}
	}
	return ""
}

// Required fails on empty or whitespace-only values.
func Required(msg string) Check {
	return func(v string, _ fields.Set) string {
		if strings.TrimSpace(v) == "" {
			return msg
		}
		return ""
	}
}

// RequiredCountry fails when no country is chosen, including the placeholder.
func RequiredCountry(msg string) Check {
	return func(v string, _ fields.Set) string {
		if strings.TrimSpace(fields.NormalizeCountry(v)) == "" {
			return msg
		}
		return ""
	}
}

// Matches fails when v does not match re.
func Matches(re *regexp.Regexp, msg string) Check {
	return func(v string, _ fields.Set) string {
		if !re.MatchString(v) {
			return msg
		}
		return ""
	}
}

// Numeric fails when v is not a decimal number.
func Numeric(msg string) Check {
	return func(v string, _ fields.Set) string {
		if _, ok := quote.ParseAmount(v); !ok {
			return msg
		}
		return ""
	}
}

// AtLeast fails when v is below limit. The message is suffixed with the limit
// and the selected fiat currency.
func AtLeast(limit decimal.Decimal, prefix string) Check {
	return func(v string, set fields.Set) string {
		amount, ok := quote.ParseAmount(v)
		if ok && amount.LessThan(limit) {
			return boundMessage(prefix, limit, set)
		}
		return ""
	}
}

// AtMost fails when v is above limit.
func AtMost(limit decimal.Decimal, prefix string) Check {
	return func(v string, set fields.Set) string {
		amount, ok := quote.ParseAmount(v)
		if ok && amount.GreaterThan(limit) {
			return boundMessage(prefix, limit, set)
		}
		return ""
	}
}

func boundMessage(prefix string, limit decimal.Decimal, set fields.Set) string {
	if cur := set.Get(fields.Currency); cur != "" {
		return fmt.Sprintf("%s %s %s", prefix, limit.String(), cur)
	}
	return fmt.Sprintf("%s %s", prefix, limit.String())
}
