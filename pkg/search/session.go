package search

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matst80/casa-finder/pkg/catalog"
	"github.com/matst80/casa-finder/pkg/favorites"
	"github.com/matst80/casa-finder/pkg/filter"
	"github.com/matst80/casa-finder/pkg/sorting"
	"github.com/matst80/casa-finder/pkg/types"
	"github.com/matst80/casa-finder/pkg/urlsync"
	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ErrNavigationUnsupported = errors.New("history does not support navigation")

var (
	noSearches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casa_finder_manual_searches_total",
		Help: "The total number of manual search triggers",
	})
	noFilterUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casa_finder_filter_updates_total",
		Help: "The total number of filter updates",
	}, []string{"kind"})
	noSorts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casa_finder_sorts_total",
		Help: "The total number of sort runs",
	}, []string{"key"})
)

// Session is one user's search: filters, sort key, favorites and the url
// projection of the filters.
type Session struct {
	Id string

	mu         sync.Mutex
	catalog    *catalog.Catalog
	state      types.FilterState
	sortBy     types.SortKey
	memo       filter.Memo
	favorites  *favorites.Store
	history    urlsync.History
	controller *urlsync.Controller
	logger     *slog.Logger

	sorted     []types.Property
	sortedGen  uint64
	sortedKey  types.SortKey
	lastResult filter.Result
	loggedGen  uint64

	lastAccess atomic.Int64
}

// NewSession mounts the url controller, the initial filters come from the
// history query or from the defaults when it is empty.
func NewSession(id string, c *catalog.Catalog, history urlsync.History, fav *favorites.Store, logger *slog.Logger) *Session {
	logger = logger.With("session", id)
	s := &Session{
		Id:         id,
		catalog:    c,
		sortBy:     types.SortDefault,
		favorites:  fav,
		history:    history,
		controller: urlsync.NewController(history, logger),
		logger:     logger,
	}
	s.state = s.controller.Mount()
	return s
}

func (s *Session) touch(now time.Time) {
	s.lastAccess.Store(now.UnixNano())
}

// LastAccess is the time the session was last handed out by the registry.
func (s *Session) LastAccess() time.Time {
	return time.Unix(0, s.lastAccess.Load())
}

func (s *Session) publish() {
	if _, err := s.controller.Publish(s.state); err != nil {
		s.logger.Warn("failed to update url", "error", err)
	}
}

// apply runs the pipeline through the memo and returns the sorted items.
// Callers must hold s.mu.
func (s *Session) apply() []types.Property {
	res, gen := s.memo.Apply(s.catalog, s.state)
	s.lastResult = res
	if gen != s.loggedGen {
		s.loggedGen = gen
		for _, d := range res.Diagnostics {
			s.logger.Warn("ignoring invalid filter bound", "field", d.Field, "value", d.Value)
		}
	}
	if s.sorted == nil || gen != s.sortedGen || s.sortBy != s.sortedKey {
		noSorts.WithLabelValues(string(s.sortBy)).Inc()
		s.sorted = sorting.Sort(res.Items, s.sortBy)
		s.sortedGen = gen
		s.sortedKey = s.sortBy
	}
	return s.sorted
}

// FilteredProperties returns the filtered and sorted properties. The slice
// is shared until the next change and must not be modified.
func (s *Session) FilteredProperties() []types.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apply()
}

// Diagnostics lists the numeric bounds ignored by the last pipeline run.
func (s *Session) Diagnostics() []filter.BoundError {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apply()
	return s.lastResult.Diagnostics
}

// Bounds is the map area covering the current result.
func (s *Session) Bounds() orb.Bound {
	return catalog.Bounds(s.FilteredProperties())
}

// Generation changes every time the pipeline recomputes.
func (s *Session) Generation() uint64 {
	return s.memo.Generation()
}

func (s *Session) State() types.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Session) Filters() types.BasicFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Basic.Clone()
}

func (s *Session) AdvancedFilters() types.AdvancedFilters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Advanced.Clone()
}

// UpdateFilter replaces a single basic filter and projects the url.
func (s *Session) UpdateFilter(key string, values ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.state.WithFilter(key, values...)
	if err != nil {
		return err
	}
	noFilterUpdates.WithLabelValues("basic").Inc()
	s.state = next
	s.publish()
	return nil
}

// UpdateAdvancedFilters replaces the advanced record as a whole. Values
// shared with the basic filters narrow the result together with them.
func (s *Session) UpdateAdvancedFilters(advanced types.AdvancedFilters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	noFilterUpdates.WithLabelValues("advanced").Inc()
	s.state = s.state.WithAdvanced(advanced)
	s.publish()
}

func (s *Session) ClearAdvancedFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	noFilterUpdates.WithLabelValues("clear").Inc()
	s.state = s.state.ClearAdvanced()
	s.publish()
}

func (s *Session) SortBy() types.SortKey {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortBy
}

// SetSortBy changes the order of the result, unknown keys select the default order.
func (s *Session) SetSortBy(key types.SortKey) {
	if !key.IsValid() {
		key = types.SortDefault
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sortBy = key
}

func (s *Session) Favorites() []types.PropertyId {
	return s.favorites.IDs()
}

func (s *Session) IsFavorite(id types.PropertyId) bool {
	return s.favorites.IsFavorite(id)
}

func (s *Session) ToggleFavorite(ctx context.Context, id types.PropertyId) (bool, error) {
	return s.favorites.Toggle(ctx, id)
}

// Search forces the next read to run the pipeline even when nothing changed.
func (s *Session) Search() {
	noSearches.Inc()
	s.memo.Invalidate()
}

// IsLoading is true until a catalog is attached.
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog == nil
}

// Query is the current url projection without leading "?".
func (s *Session) Query() string {
	return s.controller.Query()
}

func (s *Session) Phase() urlsync.Phase {
	return s.controller.Phase()
}

// HydrateFromURL replaces the filters with the ones decoded from the current url.
func (s *Session) HydrateFromURL() types.FilterState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = s.controller.HydrateFromURL()
	return s.state.Clone()
}

// Navigate moves the url from outside and hydrates the filters from it.
func (s *Session) Navigate(query string) (types.FilterState, error) {
	nav, ok := s.history.(urlsync.Navigator)
	if !ok {
		return s.State(), ErrNavigationUnsupported
	}
	nav.Navigate(query)
	return s.HydrateFromURL(), nil
}
