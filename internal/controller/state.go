// Package controller owns the purchase form state. Every change goes through
// Reduce, a pure transition from one State to the next.
package controller

import (
	"errors"
	"fmt"
	"slices"

	"cryptoquote/internal/availability"
	"cryptoquote/internal/fields"
	"cryptoquote/internal/provider"
	"cryptoquote/internal/quote"
	"cryptoquote/internal/rates"
	"cryptoquote/internal/validation"
)

var (
	ErrUnknownField     = errors.New("unknown field")
	ErrReadOnlyField    = errors.New("field is derived and cannot be set")
	ErrUnavailableAsset = errors.New("cryptocurrency is not available for the billing country")
	ErrInvalidForm      = errors.New("form is invalid")
)

// State is a snapshot of the form. Values are never mutated after a
// transition returns them.
type State struct {
	Fields     fields.Set
	Rates      *rates.Table
	Quote      quote.Quote
	Available  []fields.Asset
	Countries  []provider.Country
	Validation validation.Result
}

// Event is an input to Reduce.
type Event interface {
	event()
}

// FieldChanged sets one user-editable field.
type FieldChanged struct {
	Key   fields.Key
	Value string
}

// RatesLoaded replaces the rate table wholesale.
type RatesLoaded struct {
	Table *rates.Table
}

// CountriesLoaded replaces the selectable country list.
type CountriesLoaded struct {
	Countries []provider.Country
}

func (FieldChanged) event()    {}
func (RatesLoaded) event()     {}
func (CountriesLoaded) event() {}

// Rules holds the collaborators a transition consults.
type Rules struct {
	Policy     availability.Policy
	Engine     *validation.Engine
	Calculator quote.Calculator
}

// DefaultRules returns the production policy, schema and markup.
func DefaultRules() Rules {
	return Rules{
		Policy:     availability.DefaultPolicy(),
		Engine:     validation.DefaultEngine(validation.DefaultBounds()),
		Calculator: quote.NewCalculator(quote.DefaultMarkup),
	}
}

// Initial builds the session-start state from the reference lists and the
// inbound affiliate id. Rates are unloaded and countries empty.
func (r Rules) Initial(refs fields.References, affiliateID string) State {
	s := State{Fields: fields.Defaults(refs, affiliateID)}
	return r.derive(r.resolveAvailability(s))
}

// Reduce applies ev to s and returns the next state. s is left untouched.
func (r Rules) Reduce(s State, ev Event) (State, error) {
	switch e := ev.(type) {
	case FieldChanged:
		return r.setField(s, e.Key, e.Value)
	case RatesLoaded:
		s.Rates = e.Table
		return r.derive(s), nil
	case CountriesLoaded:
		s.Countries = slices.Clone(e.Countries)
		return s, nil
	default:
		return s, fmt.Errorf("unsupported event %T", ev)
	}
}

func (r Rules) setField(s State, k fields.Key, v string) (State, error) {
	switch {
	case !k.Valid():
		return s, fmt.Errorf("%w: %q", ErrUnknownField, k)
	case k.Derived():
		return s, fmt.Errorf("%w: %q", ErrReadOnlyField, k)
	case k == fields.Crypto && !fields.ContainsAsset(s.Available, v):
		return s, fmt.Errorf("%w: %q", ErrUnavailableAsset, v)
	}

	if k == fields.BillCountry {
		v = fields.NormalizeCountry(v)
	}
	s.Fields = s.Fields.With(k, v)

	if k == fields.BillCountry {
		s = r.resolveAvailability(s)
	}
	return r.derive(s), nil
}

// resolveAvailability recomputes the purchasable list and moves the selection
// to its first entry when the current one dropped out.
func (r Rules) resolveAvailability(s State) State {
	country, _ := s.Fields.BillingCountry()
	s.Available = r.Policy.Resolve(country)
	if !fields.ContainsAsset(s.Available, s.Fields.Get(fields.Crypto)) {
		next := ""
		if len(s.Available) > 0 {
			next = s.Available[0].Name
		}
		s.Fields = s.Fields.With(fields.Crypto, next)
	}
	return s
}

// derive recomputes the quote, the crypto_amount field and the validation
// result. It depends only on the fields and rate table, so repeated calls
// converge.
func (r Rules) derive(s State) State {
	s.Quote = r.Calculator.Quote(
		s.Rates,
		s.Fields.Get(fields.FiatAmount),
		s.Fields.Get(fields.Currency),
		s.Fields.Get(fields.Crypto),
	)
	s.Fields = s.Fields.With(fields.CryptoAmount, s.Quote.Display())
	s.Validation = r.Engine.Validate(s.Fields)
	return s
}
