package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/matst80/casa-finder/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const FavoritesKey = "casa-finder-favorites"

var (
	noToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casa_finder_favorite_toggles_total",
		Help: "The total number of favorite toggles",
	}, []string{"action"})
	noCorrupted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casa_finder_favorites_corrupted_total",
		Help: "The total number of stored favorite lists that could not be parsed",
	})
)

// SessionKey is the storage key for the favorites of one session.
func SessionKey(sessionId string) string {
	if sessionId == "" {
		return FavoritesKey
	}
	return FavoritesKey + ":" + sessionId
}

// Store is the set of favorite property ids, kept in insertion order.
type Store struct {
	mu      sync.RWMutex
	key     string
	backend Backend
	logger  *slog.Logger
	ids     []types.PropertyId
}

// New loads the stored list once. A missing or unreadable list starts an empty set.
func New(ctx context.Context, backend Backend, key string, logger *slog.Logger) *Store {
	s := &Store{
		key:     key,
		backend: backend,
		logger:  logger,
		ids:     []types.PropertyId{},
	}
	s.load(ctx)
	return s
}

func (s *Store) load(ctx context.Context) {
	data, err := s.backend.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to load favorites", "key", s.key, "error", err)
		}
		return
	}
	var stored []string
	if err := json.Unmarshal(data, &stored); err != nil {
		noCorrupted.Inc()
		s.logger.Warn("stored favorites are corrupted, starting empty", "key", s.key, "error", err)
		return
	}
	for _, id := range stored {
		pid := types.PropertyId(id)
		if id != "" && !slices.Contains(s.ids, pid) {
			s.ids = append(s.ids, pid)
		}
	}
}

// Toggle flips membership of id and persists the whole list. It returns true
// when id is a favorite afterwards. The in memory set is updated even when
// persisting fails.
func (s *Store) Toggle(ctx context.Context, id types.PropertyId) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := slices.Index(s.ids, id)
	added := idx < 0
	if added {
		s.ids = append(s.ids, id)
		noToggles.WithLabelValues("add").Inc()
	} else {
		s.ids = slices.Delete(s.ids, idx, idx+1)
		noToggles.WithLabelValues("remove").Inc()
	}
	return added, s.persist(ctx)
}

func (s *Store) persist(ctx context.Context) error {
	data, err := json.Marshal(s.ids)
	if err != nil {
		return err
	}
	if err := s.backend.Save(ctx, s.key, data); err != nil {
		s.logger.Error("failed to persist favorites", "key", s.key, "error", err)
		return fmt.Errorf("persist favorites: %w", err)
	}
	return nil
}

func (s *Store) IsFavorite(id types.PropertyId) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.ids, id)
}

// IDs returns a copy of the favorite ids in the order they were added.
func (s *Store) IDs() []types.PropertyId {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.ids)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
