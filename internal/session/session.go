// Package session holds live datasets and their replay logs in
// memory, keyed by generated session ids. Sessions are created on
// upload, deleted explicitly, or reaped by the TTL janitor.
package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapclean/pkg/core"
)

// Info is a read-only snapshot of one session for listings.
type Info struct {
	ID       string    `json:"session_id"`
	Name     string    `json:"name"`
	Rows     int       `json:"rows"`
	Cols     int       `json:"columns"`
	LastUsed time.Time `json:"last_used"`
}

type entry struct {
	name     string
	ds       *core.Dataset
	log      []core.LogEntry
	lastUsed time.Time
}

// Store is the in-memory core.SessionStore. A zero TTL disables
// expiry.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*entry
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the idle lifetime after which the janitor reaps a
// session.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates an empty session store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[string]*entry),
		logger:   slog.New(slog.DiscardHandler),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create registers a new session around the dataset and returns its id.
func (s *Store) Create(name string, ds *core.Dataset) string {
	id := uuid.New().String()
	s.mu.Lock()
	s.sessions[id] = &entry{name: name, ds: ds, lastUsed: s.now()}
	s.mu.Unlock()
	s.logger.Info("session created", "session", id, "name", name, "rows", ds.Rows(), "columns", ds.NumCols())
	return id
}

// Load returns the session's dataset.
func (s *Store) Load(id string) (*core.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, &core.SessionNotFoundError{ID: id}
	}
	e.lastUsed = s.now()
	return e.ds, nil
}

// Save stores the mutated dataset back into the session.
func (s *Store) Save(id string, ds *core.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return &core.SessionNotFoundError{ID: id}
	}
	e.ds = ds
	e.lastUsed = s.now()
	return nil
}

// AppendLog appends one batch entry to the session's replay log.
func (s *Store) AppendLog(id string, le core.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return &core.SessionNotFoundError{ID: id}
	}
	e.log = append(e.log, le)
	return nil
}

// Log returns the session's replay log in append order.
func (s *Store) Log(id string) ([]core.LogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, &core.SessionNotFoundError{ID: id}
	}
	out := make([]core.LogEntry, len(e.log))
	copy(out, e.log)
	return out, nil
}

// Delete removes the session and its log. Deleting an unknown id is a
// no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	_, existed := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if existed {
		s.logger.Info("session deleted", "session", id)
	}
}

// Name returns the upload filename the session was created with.
func (s *Store) Name(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return "", &core.SessionNotFoundError{ID: id}
	}
	return e.name, nil
}

// List returns a snapshot of all live sessions, oldest first.
func (s *Store) List() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Info, 0, len(s.sessions))
	for id, e := range s.sessions {
		out = append(out, Info{
			ID:       id,
			Name:     e.name,
			Rows:     e.ds.Rows(),
			Cols:     e.ds.NumCols(),
			LastUsed: e.lastUsed,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastUsed.Before(out[j].LastUsed) })
	return out
}

// Sweep removes sessions idle past the TTL and returns how many were
// reaped. Without a TTL it does nothing.
func (s *Store) Sweep() int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := s.now().Add(-s.ttl)
	s.mu.Lock()
	var reaped []string
	for id, e := range s.sessions {
		if e.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			reaped = append(reaped, id)
		}
	}
	s.mu.Unlock()
	for _, id := range reaped {
		s.logger.Info("session expired", "session", id, "ttl", s.ttl)
	}
	return len(reaped)
}

// Janitor sweeps on the interval until the context is cancelled.
func (s *Store) Janitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

var _ core.SessionStore = (*Store)(nil)
