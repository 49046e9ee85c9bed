package search

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/matst80/casa-finder/pkg/catalog"
	"github.com/matst80/casa-finder/pkg/favorites"
	"github.com/matst80/casa-finder/pkg/urlsync"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrSessionNotFound = errors.New("session not found")

var (
	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "casa_finder_active_sessions",
		Help: "The number of sessions kept in memory",
	})
	noEvictedSessions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casa_finder_evicted_sessions_total",
		Help: "The total number of idle sessions removed",
	})
)

// Registry keeps the sessions of the service, all sharing one catalog.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	catalog  *catalog.Catalog
	backend  favorites.Backend
	logger   *slog.Logger
	now      func() time.Time
}

func NewRegistry(c *catalog.Catalog, backend favorites.Backend, logger *slog.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		catalog:  c,
		backend:  backend,
		logger:   logger,
		now:      time.Now,
	}
}

func NewSessionId() string {
	return uuid.NewString()
}

func (r *Registry) Catalog() *catalog.Catalog {
	return r.catalog
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(r.now())
	return s, nil
}

// Open returns the session for id, creating it when missing. A new session
// mounts with query as its url. The second return value is true for new sessions.
func (r *Registry) Open(ctx context.Context, id, query string) (*Session, bool) {
	if s, err := r.Get(id); err == nil {
		return s, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		s.touch(r.now())
		return s, false
	}
	fav := favorites.New(ctx, r.backend, favorites.SessionKey(id), r.logger)
	s := NewSession(id, r.catalog, urlsync.NewMemoryHistory(query), fav, r.logger)
	s.touch(r.now())
	r.sessions[id] = s
	activeSessions.Set(float64(len(r.sessions)))
	r.logger.Debug("session opened", "session", id, "query", s.Query())
	return s, true
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	activeSessions.Set(float64(len(r.sessions)))
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// EvictIdle removes sessions not accessed for maxIdle. Favorites are
// persisted by their backend and come back when the session is opened again.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, s := range r.sessions {
		if s.LastAccess().Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	activeSessions.Set(float64(len(r.sessions)))
	if evicted > 0 {
		noEvictedSessions.Add(float64(evicted))
		r.logger.Debug("evicted idle sessions", "evicted", evicted, "remaining", len(r.sessions))
	}
	return evicted
}

// StartEviction runs EvictIdle every interval until the returned stop
// function is called.
func (r *Registry) StartEviction(interval, maxIdle time.Duration) func(ctx context.Context) error {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-ticker.C:
				r.EvictIdle(maxIdle)
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
		select {
		case <-stopped:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
