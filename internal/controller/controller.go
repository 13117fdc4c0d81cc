package controller

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"

	"cryptoquote/internal/fields"
	"cryptoquote/internal/metrics"
	"cryptoquote/internal/provider"
	"cryptoquote/internal/rates"
	"cryptoquote/internal/submission"
	"cryptoquote/internal/validation"
)

// RefreshEnqueuer asks for an out-of-band refresh of the shared rate cache.
type RefreshEnqueuer interface {
	EnqueueRefresh(ctx context.Context) error
}

// Controller serializes transitions over one form session and runs its
// boundary calls.
type Controller struct {
	rules     Rules
	feed      provider.RateFeed
	directory provider.CountryDirectory
	navigator submission.Navigator
	refresh   RefreshEnqueuer
	baseURL   string
	logger    *zap.SugaredLogger

	mu        sync.Mutex
	state     State
	observers []func(State)
}

// Config wires a Controller. Feed, Directory and Navigator are required.
// Refresh is optional; when set it is asked for a cache refresh after a
// failed rate fetch.
type Config struct {
	Rules       Rules
	References  fields.References
	AffiliateID string
	Feed        provider.RateFeed
	Directory   provider.CountryDirectory
	Navigator   submission.Navigator
	Refresh     RefreshEnqueuer
	BaseURL     string
	Logger      *zap.SugaredLogger
}

// New creates a Controller in its initial state. No boundary call is made
// until Start.
func New(cfg Config) *Controller {
	if cfg.Rules.Policy == nil || cfg.Rules.Engine == nil {
		cfg.Rules = DefaultRules()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = submission.DefaultBaseURL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	return &Controller{
		rules:     cfg.Rules,
		feed:      cfg.Feed,
		directory: cfg.Directory,
		navigator: cfg.Navigator,
		refresh:   cfg.Refresh,
		baseURL:   cfg.BaseURL,
		logger:    cfg.Logger,
		state:     cfg.Rules.Initial(cfg.References, cfg.AffiliateID),
	}
}

// Start fetches rates and countries in the background. The returned channel
// is closed once both calls have resolved. Failures are logged and leave the
// state unchanged; a failed rate fetch also enqueues a cache refresh.
func (c *Controller) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		entries, err := c.feed.FetchRates(ctx)
		if err != nil {
			c.logger.Warnw("Rate feed fetch failed, using fallback rate", "error", err)
			c.enqueueRefresh(ctx)
			return
		}
		tbl := rates.Load(entries)
		c.OnRatesLoaded(tbl)
		c.logger.Debugw("Rates loaded", "rates", tbl.Len())
	}()
	go func() {
		defer wg.Done()
		countries, err := c.directory.Countries(ctx)
		if err != nil {
			c.logger.Warnw("Country directory fetch failed", "error", err)
			return
		}
		c.apply(CountriesLoaded{Countries: countries})
	}()

	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}

func (c *Controller) enqueueRefresh(ctx context.Context) {
	if c.refresh == nil {
		return
	}
	if err := c.refresh.EnqueueRefresh(ctx); err != nil {
		c.logger.Warnw("Rate refresh enqueue failed", "error", err)
	}
}

// Subscribe registers fn to receive every new state. fn runs synchronously
// inside the transition and must not call back into the Controller.
func (c *Controller) Subscribe(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

// State returns the current snapshot.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Countries returns the loaded country list, empty until the directory answers.
func (c *Controller) Countries() []provider.Country {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.state.Countries)
}

// SetField updates a user-editable field and everything derived from it.
func (c *Controller) SetField(k fields.Key, v string) (State, error) {
	return c.apply(FieldChanged{Key: k, Value: v})
}

// OnRatesLoaded replaces the rate table and recomputes the quote.
func (c *Controller) OnRatesLoaded(tbl *rates.Table) State {
	s, _ := c.apply(RatesLoaded{Table: tbl})
	return s
}

// Outcome is the result of a submit attempt. URL is empty unless the form
// was valid and navigation succeeded.
type Outcome struct {
	URL        string
	Validation validation.Result
}

// Submit redirects through the Navigator when the form is valid. Otherwise it
// returns the current validation result with ErrInvalidForm and no
// navigation happens.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	s := c.State()
	out := Outcome{Validation: s.Validation}
	if !s.Validation.IsValid() {
		metrics.IncSubmission("invalid")
		for k := range s.Validation.Errors {
			metrics.IncValidationError(string(k))
		}
		return out, ErrInvalidForm
	}

	target := submission.URL(c.baseURL, s.Fields)
	if err := c.navigator.Navigate(ctx, target); err != nil {
		metrics.IncSubmission("error")
		c.logger.Errorw("Navigation failed", "error", err)
		return out, err
	}

	metrics.IncSubmission("redirected")
	c.logger.Infow("Form submitted", "affiliate_id", s.Fields.Get(fields.AffiliateID))
	out.URL = target
	return out, nil
}

func (c *Controller) apply(ev Event) (State, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := c.rules.Reduce(c.state, ev)
	if err != nil {
		return c.state, err
	}
	c.state = next
	for _, fn := range c.observers {
		fn(next)
	}
	return next, nil
}
