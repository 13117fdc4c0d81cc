// Package api implements HTTP handlers for the purchase form service.
package api

import (
	"encoding/json"
	"net/http"

	"cryptoquote/internal/controller"
	"cryptoquote/internal/fields"
	"cryptoquote/internal/provider"
	"cryptoquote/internal/session"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"session not found"`
}

// QuoteBody is the derived conversion.
type QuoteBody struct {
	FiatAmountInUSD     string `json:"fiat_amount_in_usd" example:"110"`
	EffectiveCryptoRate string `json:"effective_crypto_rate" example:"52500"`
	CryptoAmountInUSD   string `json:"crypto_amount_in_usd" example:"0.0020952380952381"`
	CryptoAmount        string `json:"crypto_amount" example:"0.0020952"`
}

// StateResponse is the client view of a form session.
type StateResponse struct {
	SessionID        string             `json:"session_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Fields           map[string]string  `json:"fields"`
	Quote            QuoteBody          `json:"quote"`
	RatesLoaded      bool               `json:"rates_loaded"`
	AvailableCryptos []fields.Asset     `json:"available_cryptos"`
	Countries        []provider.Country `json:"countries"`
	// CountryOptions are the select entries, the placeholder first.
	CountryOptions []string          `json:"country_options"`
	Errors         map[string]string `json:"errors"`
	IsValid        bool              `json:"is_valid"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func newStateResponse(s *session.Session) StateResponse {
	st := s.Controller.State()

	options := make([]string, 0, len(st.Countries)+1)
	options = append(options, fields.CountrySentinel)
	for _, c := range st.Countries {
		options = append(options, c.Name)
	}

	visible := s.VisibleErrors()
	errs := make(map[string]string, len(visible))
	for k, msg := range visible {
		errs[string(k)] = msg
	}

	countries := st.Countries
	if countries == nil {
		countries = []provider.Country{}
	}

	return StateResponse{
		SessionID:        s.ID,
		Fields:           st.Fields.Map(),
		Quote:            newQuoteBody(st),
		RatesLoaded:      st.Rates.Loaded(),
		AvailableCryptos: st.Available,
		Countries:        countries,
		CountryOptions:   options,
		Errors:           errs,
		IsValid:          st.Validation.IsValid(),
	}
}

func newQuoteBody(st controller.State) QuoteBody {
	return QuoteBody{
		FiatAmountInUSD:     st.Quote.FiatAmountInUSD.String(),
		EffectiveCryptoRate: st.Quote.EffectiveCryptoRate.String(),
		CryptoAmountInUSD:   st.Quote.CryptoAmountInUSD.String(),
		CryptoAmount:        st.Quote.Display(),
	}
}
