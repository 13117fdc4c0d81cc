package api

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"cryptoquote/internal/provider"
	"cryptoquote/internal/quote"
	"cryptoquote/internal/rates"
)

// QuoteResponse represents a stateless quote
type QuoteResponse struct {
	FiatAmount     string `json:"fiat_amount" example:"100"`
	Currency       string `json:"currency" example:"EUR"`
	Cryptocurrency string `json:"cryptocurrency" example:"BTC"`
	RatesLoaded    bool   `json:"rates_loaded"`
	QuoteBody
}

// CountriesResponse lists the selectable countries
type CountriesResponse struct {
	Countries []provider.Country `json:"countries"`
}

// HandleGetQuote godoc
// @Summary Quote a fiat amount
// @Description Converts a fiat amount into the cryptocurrency amount offered, markup included. Missing rates fall back to 1.
// @Tags quotes
// @Produce json
// @Param fiat_amount query string true "Fiat amount" example(100)
// @Param currency query string false "Fiat currency" default(EUR)
// @Param cryptocurrency query string false "Cryptocurrency" default(BTC)
// @Success 200 {object} QuoteResponse
// @Failure 400 {object} ErrorResponse "Missing fiat_amount"
// @Router /quote [get]
func HandleGetQuote(feed provider.RateFeed, calc quote.Calculator, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		amount := strings.TrimSpace(q.Get("fiat_amount"))
		if amount == "" {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "fiat_amount is required"})
			return
		}
		currency := defaultString(q.Get("currency"), "EUR")
		crypto := defaultString(q.Get("cryptocurrency"), "BTC")

		var tbl *rates.Table
		if entries, err := feed.FetchRates(r.Context()); err != nil {
			logger.Warnw("Rate feed unavailable, quoting with fallback rate", "error", err)
		} else {
			tbl = rates.Load(entries)
		}

		res := calc.Quote(tbl, amount, currency, crypto)
		writeJSON(w, http.StatusOK, QuoteResponse{
			FiatAmount:     amount,
			Currency:       currency,
			Cryptocurrency: crypto,
			RatesLoaded:    tbl.Loaded(),
			QuoteBody: QuoteBody{
				FiatAmountInUSD:     res.FiatAmountInUSD.String(),
				EffectiveCryptoRate: res.EffectiveCryptoRate.String(),
				CryptoAmountInUSD:   res.CryptoAmountInUSD.String(),
				CryptoAmount:        res.Display(),
			},
		})
	}
}

// HandleListCountries godoc
// @Summary List countries
// @Description Returns the selectable billing countries sorted by name.
// @Tags countries
// @Produce json
// @Success 200 {object} CountriesResponse
// @Failure 503 {object} ErrorResponse "Country directory unavailable"
// @Router /countries [get]
func HandleListCountries(dir provider.CountryDirectory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		countries, err := dir.Countries(r.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "Country directory unavailable"})
			return
		}
		if countries == nil {
			countries = []provider.Country{}
		}
		writeJSON(w, http.StatusOK, CountriesResponse{Countries: countries})
	}
}

func defaultString(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
