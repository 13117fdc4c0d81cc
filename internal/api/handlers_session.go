package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cryptoquote/internal/controller"
	"cryptoquote/internal/fields"
	"cryptoquote/internal/session"
)

// SessionStore is the subset of session.Store the handlers use.
type SessionStore interface {
	Create(affiliateID string) (*session.Session, <-chan struct{}, error)
	Get(id string) (*session.Session, error)
	Delete(id string) error
}

// SetFieldRequest represents the request body for a field update
type SetFieldRequest struct {
	Key   string `json:"key" example:"fiat_amount"`
	Value string `json:"value" example:"100"`
}

// SubmitResponse represents the outcome of a submit attempt
type SubmitResponse struct {
	RedirectURL string            `json:"redirect_url,omitempty" example:"https://digitalcoinranker.com/?currency=EUR"`
	Errors      map[string]string `json:"errors,omitempty"`
	IsValid     bool              `json:"is_valid"`
}

// HandleCreateSession godoc
// @Summary Start a purchase form session
// @Description Creates a form with default values and starts fetching rates and countries in the background. The response does not wait for them.
// @Tags sessions
// @Produce json
// @Param affiliateId query string false "Affiliate id carried into the form"
// @Success 201 {object} StateResponse "Session created"
// @Failure 503 {object} ErrorResponse "Too many active sessions"
// @Router /sessions [post]
func HandleCreateSession(store SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, _, err := store.Create(r.URL.Query().Get("affiliateId"))
		if err != nil {
			if errors.Is(err, session.ErrCapacity) {
				writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "Too many active sessions"})
			} else {
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}
		writeJSON(w, http.StatusCreated, newStateResponse(s))
	}
}

// HandleDeleteSession godoc
// @Summary Discard a form session
// @Tags sessions
// @Param id path string true "Session id"
// @Success 204 "Session deleted"
// @Failure 404 {object} ErrorResponse "Unknown session"
// @Router /sessions/{id} [delete]
func HandleDeleteSession(store SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Delete(chi.URLParam(r, "id")); err != nil {
			if errors.Is(err, session.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Unknown session"})
			} else {
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleGetSession godoc
// @Summary Get form state
// @Description Returns fields, quote, purchasable cryptocurrencies, countries and the errors of touched fields.
// @Tags sessions
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} StateResponse
// @Failure 404 {object} ErrorResponse "Unknown session"
// @Router /sessions/{id} [get]
func HandleGetSession(store SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(w, r, store)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, newStateResponse(s))
	}
}

// HandleSetField godoc
// @Summary Set a form field
// @Description Updates one field, marks it touched and returns the recomputed state. crypto_amount is derived and cannot be set.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session id"
// @Param request body SetFieldRequest true "Field key and value"
// @Success 200 {object} StateResponse
// @Failure 400 {object} ErrorResponse "Unknown, derived or unavailable field value"
// @Failure 404 {object} ErrorResponse "Unknown session"
// @Router /sessions/{id}/fields [patch]
func HandleSetField(store SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(w, r, store)
		if !ok {
			return
		}

		var req SetFieldRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid JSON"})
			return
		}

		key := fields.Key(req.Key)
		if _, err := s.Controller.SetField(key, req.Value); err != nil {
			switch {
			case errors.Is(err, controller.ErrUnknownField),
				errors.Is(err, controller.ErrReadOnlyField),
				errors.Is(err, controller.ErrUnavailableAsset):
				writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			default:
				writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
			}
			return
		}
		s.Touch(key)

		writeJSON(w, http.StatusOK, newStateResponse(s))
	}
}

// HandleSubmit godoc
// @Summary Submit the form
// @Description Touches every field. A valid form returns the partner redirect URL; an invalid one returns every error and issues no redirect.
// @Tags sessions
// @Produce json
// @Param id path string true "Session id"
// @Success 200 {object} SubmitResponse "Form valid, redirect issued"
// @Failure 404 {object} ErrorResponse "Unknown session"
// @Failure 422 {object} SubmitResponse "Form invalid"
// @Failure 502 {object} ErrorResponse "Redirect could not be issued"
// @Router /sessions/{id}/submit [post]
func HandleSubmit(store SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := lookupSession(w, r, store)
		if !ok {
			return
		}
		s.TouchAll()

		out, err := s.Controller.Submit(r.Context())
		switch {
		case errors.Is(err, controller.ErrInvalidForm):
			errs := make(map[string]string, len(out.Validation.Errors))
			for k, msg := range out.Validation.Errors {
				errs[string(k)] = msg
			}
			writeJSON(w, http.StatusUnprocessableEntity, SubmitResponse{Errors: errs})
		case err != nil:
			writeJSON(w, http.StatusBadGateway, ErrorResponse{Error: "redirect failed"})
		default:
			writeJSON(w, http.StatusOK, SubmitResponse{RedirectURL: out.URL, IsValid: true})
		}
	}
}

func lookupSession(w http.ResponseWriter, r *http.Request, store SessionStore) (*session.Session, bool) {
	s, err := store.Get(chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Unknown session"})
		} else {
			writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: "Internal error"})
		}
		return nil, false
	}
	return s, true
}
