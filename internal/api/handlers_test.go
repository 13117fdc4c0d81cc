package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"cryptoquote/internal/provider"
	"cryptoquote/internal/quote"
	"cryptoquote/internal/session"
)

func patchField(t *testing.T, h http.Handler, id, key, value string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(SetFieldRequest{Key: key, Value: value})
	req := httptest.NewRequest(http.MethodPatch, "/sessions/"+id+"/fields", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeState(t *testing.T, w *httptest.ResponseRecorder) StateResponse {
	t.Helper()
	var resp StateResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return resp
}

func TestHandleCreateSession(t *testing.T) {
	store := newTestStore(t, nil)
	h := newTestRouter(store)

	req := httptest.NewRequest(http.MethodPost, "/sessions?affiliateId=partner-1", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", w.Code)
	}

	resp := decodeState(t, w)
	if resp.SessionID == "" {
		t.Error("Expected session_id")
	}
	if resp.Fields["client_affiliateId"] != "partner-1" {
		t.Errorf("Expected affiliate id partner-1, got %q", resp.Fields["client_affiliateId"])
	}
	if resp.Fields["currency"] != "EUR" || resp.Fields["cryptocurrency"] != "BTC" {
		t.Errorf("Expected EUR/BTC defaults, got %s/%s", resp.Fields["currency"], resp.Fields["cryptocurrency"])
	}
	if len(resp.Errors) != 0 {
		t.Errorf("Expected no visible errors on a fresh form, got %v", resp.Errors)
	}
	if resp.CountryOptions[0] != "Country" {
		t.Errorf("Expected placeholder first, got %v", resp.CountryOptions)
	}
}

func TestHandleCreateSession_AtCapacity(t *testing.T) {
	store := newLimitedTestStore(t, nil, session.Limits{MaxActive: 1})
	h := newTestRouter(store)

	codes := make([]int, 0, 2)
	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/sessions", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	if codes[0] != http.StatusCreated || codes[1] != http.StatusServiceUnavailable {
		t.Fatalf("Expected 201 then 503, got %v", codes)
	}
	if store.Len() != 1 {
		t.Errorf("Expected 1 live session, got %d", store.Len())
	}
}

func TestHandleDeleteSession(t *testing.T) {
	store := newTestStore(t, nil)
	h := newTestRouter(store)
	s := newReadySession(t, store)

	for _, want := range []int{http.StatusNoContent, http.StatusNotFound} {
		req := httptest.NewRequest(http.MethodDelete, "/sessions/"+s.ID, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("Expected status %d, got %d", want, w.Code)
		}
	}

	if _, err := store.Get(s.ID); !errors.Is(err, session.ErrNotFound) {
		t.Errorf("Expected session to be gone, got %v", err)
	}
}

func TestHandleGetSession(t *testing.T) {
	store := newTestStore(t, nil)
	h := newTestRouter(store)

	t.Run("loaded session", func(t *testing.T) {
		s := newReadySession(t, store)

		req := httptest.NewRequest(http.MethodGet, "/sessions/"+s.ID, nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		resp := decodeState(t, w)
		if !resp.RatesLoaded {
			t.Error("Expected rates_loaded")
		}
		want := []string{"Country", "Canada", "France"}
		if len(resp.CountryOptions) != len(want) {
			t.Fatalf("Expected options %v, got %v", want, resp.CountryOptions)
		}
		for i := range want {
			if resp.CountryOptions[i] != want[i] {
				t.Errorf("Expected options %v, got %v", want, resp.CountryOptions)
			}
		}
	})

	t.Run("unknown session returns 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/sessions/nope", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})
}

func TestHandleSetField(t *testing.T) {
	store := newTestStore(t, nil)
	h := newTestRouter(store)

	t.Run("amount recomputes quote", func(t *testing.T) {
		s := newReadySession(t, store)

		w := patchField(t, h, s.ID, "fiat_amount", "100")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		resp := decodeState(t, w)
		if resp.Quote.CryptoAmount != "0.0020952" {
			t.Errorf("Expected crypto amount 0.0020952, got %s", resp.Quote.CryptoAmount)
		}
		if resp.Fields["crypto_amount"] != "0.0020952" {
			t.Errorf("Expected crypto_amount field 0.0020952, got %s", resp.Fields["crypto_amount"])
		}
	})

	t.Run("huge exponent quotes zero", func(t *testing.T) {
		s := newReadySession(t, store)

		w := patchField(t, h, s.ID, "fiat_amount", "1e5000000")
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		resp := decodeState(t, w)
		if resp.Fields["crypto_amount"] != "0.0000000" {
			t.Errorf("Expected crypto_amount 0.0000000, got %s", resp.Fields["crypto_amount"])
		}
		if resp.Errors["fiat_amount"] != "Fiat amount must be a number" {
			t.Errorf("Expected fiat_amount error, got %q", resp.Errors["fiat_amount"])
		}
	})

	t.Run("only touched errors are visible", func(t *testing.T) {
		s := newReadySession(t, store)

		resp := decodeState(t, patchField(t, h, s.ID, "fiat_amount", "49"))
		if got := resp.Errors["fiat_amount"]; got != "Minimum fiat amount allowed is 50 EUR" {
			t.Errorf("Unexpected fiat_amount error %q", got)
		}
		if _, ok := resp.Errors["client_fullName"]; ok {
			t.Error("Expected untouched client_fullName error to be hidden")
		}
		if resp.IsValid {
			t.Error("Expected is_valid false")
		}
	})

	t.Run("country cascade", func(t *testing.T) {
		s := newReadySession(t, store)

		patchField(t, h, s.ID, "client_billCountry", "Canada")
		resp := decodeState(t, patchField(t, h, s.ID, "cryptocurrency", "ETH"))
		if resp.Fields["cryptocurrency"] != "ETH" {
			t.Fatalf("Expected ETH, got %s", resp.Fields["cryptocurrency"])
		}

		resp = decodeState(t, patchField(t, h, s.ID, "client_billCountry", "France"))
		if resp.Fields["cryptocurrency"] != "BTC" {
			t.Errorf("Expected reset to BTC, got %s", resp.Fields["cryptocurrency"])
		}
		if len(resp.AvailableCryptos) != 1 {
			t.Errorf("Expected one available crypto, got %v", resp.AvailableCryptos)
		}
	})

	t.Run("rejected updates return 400", func(t *testing.T) {
		s := newReadySession(t, store)

		for _, tc := range []struct{ key, value string }{
			{"client_nickname", "x"},
			{"crypto_amount", "1"},
			{"cryptocurrency", "ETH"},
		} {
			w := patchField(t, h, s.ID, tc.key, tc.value)
			if w.Code != http.StatusBadRequest {
				t.Errorf("%s: expected status 400, got %d", tc.key, w.Code)
			}
		}
	})

	t.Run("invalid JSON returns 400", func(t *testing.T) {
		s := newReadySession(t, store)

		req := httptest.NewRequest(http.MethodPatch, "/sessions/"+s.ID+"/fields", bytes.NewBufferString("{"))
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestHandleSubmit(t *testing.T) {
	valid := map[string]string{
		"client_fullName":     "Jane Doe",
		"client_email":        "jane@x.com",
		"client_phoneNum":     "+123456",
		"client_billAddress1": "1 Main St",
		"client_billCity":     "Metropolis",
		"client_billZipcode":  "00000",
		"client_billCountry":  "France",
		"fiat_amount":         "100",
		"crypto_wallet":       "abc123",
	}

	t.Run("invalid form returns 422 with all errors", func(t *testing.T) {
		store := newTestStore(t, nil)
		h := newTestRouter(store)
		s := newReadySession(t, store)

		req := httptest.NewRequest(http.MethodPost, "/sessions/"+s.ID+"/submit", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("Expected status 422, got %d", w.Code)
		}
		var resp SubmitResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.RedirectURL != "" {
			t.Errorf("Expected no redirect, got %s", resp.RedirectURL)
		}
		if resp.Errors["client_billCountry"] != "Billing Country is required" {
			t.Errorf("Unexpected country error %q", resp.Errors["client_billCountry"])
		}
		if len(s.VisibleErrors()) == 0 {
			t.Error("Expected submit to touch every field")
		}
	})

	t.Run("valid form returns redirect", func(t *testing.T) {
		store := newTestStore(t, nil)
		h := newTestRouter(store)
		s := newReadySession(t, store)
		for k, v := range valid {
			patchField(t, h, s.ID, k, v)
		}

		req := httptest.NewRequest(http.MethodPost, "/sessions/"+s.ID+"/submit", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		var resp SubmitResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		u, err := url.Parse(resp.RedirectURL)
		if err != nil {
			t.Fatalf("Invalid redirect URL: %v", err)
		}
		if u.Host != "partner.test" {
			t.Errorf("Expected partner.test host, got %s", u.Host)
		}
		if got := u.Query().Get("crypto_amount"); got != "0.0020952" {
			t.Errorf("Expected crypto_amount 0.0020952, got %s", got)
		}
		if got := u.Query().Get("client_affiliateId"); got != "aff-7" {
			t.Errorf("Expected affiliate aff-7, got %s", got)
		}
	})

	t.Run("navigation failure returns 502", func(t *testing.T) {
		store := newTestStore(t, errors.New("sink closed"))
		h := newTestRouter(store)
		s := newReadySession(t, store)
		for k, v := range valid {
			patchField(t, h, s.ID, k, v)
		}

		req := httptest.NewRequest(http.MethodPost, "/sessions/"+s.ID+"/submit", nil)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)

		if w.Code != http.StatusBadGateway {
			t.Errorf("Expected status 502, got %d", w.Code)
		}
	})
}

func TestHandleGetQuote(t *testing.T) {
	calc := quote.NewCalculator(quote.DefaultMarkup)
	logger := zap.NewNop().Sugar()

	t.Run("loaded rates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quote?fiat_amount=100&currency=EUR&cryptocurrency=BTC", nil)
		w := httptest.NewRecorder()
		HandleGetQuote(provider.NewStaticRateFeed(testRates...), calc, logger).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		var resp QuoteResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.CryptoAmount != "0.0020952" {
			t.Errorf("Expected 0.0020952, got %s", resp.CryptoAmount)
		}
		if resp.FiatAmountInUSD != "110" {
			t.Errorf("Expected 110, got %s", resp.FiatAmountInUSD)
		}
	})

	t.Run("feed failure falls back to 1", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quote?fiat_amount=100", nil)
		w := httptest.NewRecorder()
		HandleGetQuote(provider.NewFailingRateFeed(errors.New("down")), calc, logger).ServeHTTP(w, req)

		var resp QuoteResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.RatesLoaded {
			t.Error("Expected rates_loaded false")
		}
		if resp.CryptoAmount != "95.2380952" {
			t.Errorf("Expected 95.2380952, got %s", resp.CryptoAmount)
		}
	})

	t.Run("huge exponent quotes zero", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quote?fiat_amount=1e5000000", nil)
		w := httptest.NewRecorder()
		HandleGetQuote(provider.NewStaticRateFeed(testRates...), calc, logger).ServeHTTP(w, req)

		var resp QuoteResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if resp.CryptoAmount != "0.0000000" {
			t.Errorf("Expected 0.0000000, got %s", resp.CryptoAmount)
		}
	})

	t.Run("missing amount returns 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/quote", nil)
		w := httptest.NewRecorder()
		HandleGetQuote(provider.NewStaticRateFeed(), calc, logger).ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})
}

func TestHandleListCountries(t *testing.T) {
	t.Run("lists countries", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/countries", nil)
		w := httptest.NewRecorder()
		HandleListCountries(provider.NewStaticDirectory(provider.Country{ID: "CA", Name: "Canada"})).ServeHTTP(w, req)

		var resp CountriesResponse
		if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
		if len(resp.Countries) != 1 || resp.Countries[0].Name != "Canada" {
			t.Errorf("Unexpected countries %v", resp.Countries)
		}
	})

	t.Run("directory failure returns 503", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/countries", nil)
		w := httptest.NewRecorder()
		HandleListCountries(failingDirectory{}).ServeHTTP(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("Expected status 503, got %d", w.Code)
		}
	})
}

func TestLookupSession_URLParam(t *testing.T) {
	store := newTestStore(t, nil)
	s := newReadySession(t, store)

	req := httptest.NewRequest(http.MethodGet, "/sessions/"+s.ID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", s.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	HandleGetSession(store).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestHandleHealthz(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()

	handler := HandleHealthz()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}
