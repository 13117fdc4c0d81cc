// Package session keeps one form controller per browser session and tracks
// which fields the user has touched.
package session

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cryptoquote/internal/controller"
	"cryptoquote/internal/fields"
	"cryptoquote/internal/metrics"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrCapacity = errors.New("too many active sessions")
)

// Factory builds a controller for a new session.
type Factory func(affiliateID string) *controller.Controller

// Session is one live form.
type Session struct {
	ID         string
	Controller *controller.Controller

	mu       sync.Mutex
	touched  map[fields.Key]bool
	lastSeen time.Time
}

// Touch marks k as interacted with.
func (s *Session) Touch(k fields.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched[k] = true
}

// TouchAll marks every field as interacted with, as a submit attempt does.
func (s *Session) TouchAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range fields.Keys() {
		s.touched[k] = true
	}
}

// Touched returns a copy of the touched set.
func (s *Session) Touched() map[fields.Key]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return maps.Clone(s.touched)
}

// VisibleErrors returns the validation errors of touched fields only.
func (s *Session) VisibleErrors() map[fields.Key]string {
	st := s.Controller.State()
	touched := s.Touched()

	out := make(map[fields.Key]string)
	for k, msg := range st.Validation.Errors {
		if touched[k] {
			out[k] = msg
		}
	}
	return out
}

func (s *Session) seen(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Limits bounds the sessions a Store keeps. Sessions idle longer than IdleTTL
// are removed by Sweep; IdleTTL <= 0 disables eviction. MaxActive <= 0 means
// no cap on live sessions.
type Limits struct {
	IdleTTL   time.Duration
	MaxActive int
}

// Store holds live sessions in memory.
type Store struct {
	factory   Factory
	idleTTL   time.Duration
	maxActive int
	logger    *zap.SugaredLogger
	now     func() time.Time

	// boundary fetches outlive the request that created the session
	baseCtx context.Context

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore creates a Store.
func NewStore(baseCtx context.Context, factory Factory, limits Limits, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		factory:   factory,
		idleTTL:   limits.IdleTTL,
		maxActive: limits.MaxActive,
		logger:    logger,
		now:       time.Now,
		baseCtx:   baseCtx,
		sessions:  make(map[string]*Session),
	}
}

// Create starts a new session and kicks off its boundary fetches. The
// returned channel closes when those fetches resolve. ErrCapacity is returned
// once MaxActive sessions are live.
func (st *Store) Create(affiliateID string) (*Session, <-chan struct{}, error) {
	st.mu.Lock()
	if st.maxActive > 0 && len(st.sessions) >= st.maxActive {
		st.mu.Unlock()
		st.logger.Warnw("Session limit reached", "max_active", st.maxActive)
		return nil, nil, ErrCapacity
	}
	s := &Session{
		ID:         uuid.NewString(),
		Controller: st.factory(affiliateID),
		touched:    make(map[fields.Key]bool),
		lastSeen:   st.now(),
	}
	st.sessions[s.ID] = s
	n := len(st.sessions)
	st.mu.Unlock()

	metrics.SetSessionsActive(n)
	st.logger.Debugw("Session created", "session_id", s.ID)

	return s, s.Controller.Start(st.baseCtx), nil
}

// Get returns the session and refreshes its idle timer.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.seen(st.now())
	return s, nil
}

// Delete removes a session, returning ErrNotFound for unknown ids.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	if _, ok := st.sessions[id]; !ok {
		st.mu.Unlock()
		return ErrNotFound
	}
	delete(st.sessions, id)
	n := len(st.sessions)
	st.mu.Unlock()

	metrics.SetSessionsActive(n)
	st.logger.Debugw("Session deleted", "session_id", id)
	return nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes idle sessions and returns how many were removed.
func (st *Store) Sweep() int {
	if st.idleTTL <= 0 {
		return 0
	}
	now := st.now()

	st.mu.Lock()
	removed := 0
	for id, s := range st.sessions {
		if s.idleSince(now) > st.idleTTL {
			delete(st.sessions, id)
			removed++
		}
	}
	n := len(st.sessions)
	st.mu.Unlock()

	metrics.SetSessionsActive(n)
	if removed > 0 {
		st.logger.Infow("Evicted idle sessions", "count", removed, "remaining", n)
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (st *Store) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			st.Sweep()
		}
	}
}
