package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"cryptoquote/internal/controller"
	"cryptoquote/internal/fields"
	"cryptoquote/internal/provider"
	"cryptoquote/internal/rates"
	"cryptoquote/internal/session"
	"cryptoquote/internal/submission"
)

var testRates = []rates.Entry{
	{Symbol: "EUR", RateInUSD: "1.1"},
	{Symbol: "BTC", RateInUSD: "50000"},
	{Symbol: "ETH", RateInUSD: "2500"},
}

// failingDirectory always errors.
type failingDirectory struct{}

func (failingDirectory) Countries(context.Context) ([]provider.Country, error) {
	return nil, context.DeadlineExceeded
}

func newTestStore(t *testing.T, navErr error) *session.Store {
	t.Helper()
	return newLimitedTestStore(t, navErr, session.Limits{IdleTTL: time.Hour})
}

func newLimitedTestStore(t *testing.T, navErr error, limits session.Limits) *session.Store {
	t.Helper()
	factory := func(affiliateID string) *controller.Controller {
		return controller.New(controller.Config{
			References:  fields.DefaultReferences(),
			AffiliateID: affiliateID,
			Feed:        provider.NewStaticRateFeed(testRates...),
			Directory: provider.NewStaticDirectory(
				provider.Country{ID: "CA", Name: "Canada"},
				provider.Country{ID: "FR", Name: "France"},
			),
			Navigator: submission.NavigatorFunc(func(context.Context, string) error { return navErr }),
			BaseURL:   "https://partner.test/",
		})
	}
	return session.NewStore(context.Background(), factory, limits, nil)
}

// newReadySession creates a session and waits for its boundary fetches.
func newReadySession(t *testing.T, store *session.Store) *session.Session {
	t.Helper()
	s, done, err := store.Create("aff-7")
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session start did not finish")
	}
	return s
}

func newTestRouter(store SessionStore) http.Handler {
	r := chi.NewRouter()
	r.Post("/sessions", HandleCreateSession(store))
	r.Get("/sessions/{id}", HandleGetSession(store))
	r.Delete("/sessions/{id}", HandleDeleteSession(store))
	r.Patch("/sessions/{id}/fields", HandleSetField(store))
	r.Post("/sessions/{id}/submit", HandleSubmit(store))
	return r
}
