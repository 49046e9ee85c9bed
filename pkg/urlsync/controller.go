package urlsync

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/matst80/casa-finder/pkg/types"
	"github.com/matst80/casa-finder/pkg/urlstate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Phase int

const (
	// Hydrating means the state is being read from the url and nothing is written back.
	Hydrating Phase = iota
	// Synced means the url is a projection of the filter state.
	Synced
)

func (p Phase) String() string {
	switch p {
	case Hydrating:
		return "hydrating"
	case Synced:
		return "synced"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

var (
	noReplacements = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casa_finder_url_replacements_total",
		Help: "The total number of history entries replaced",
	})
	noHydrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casa_finder_url_hydrations_total",
		Help: "The total number of filter states read from the url",
	}, []string{"source"})
)

// Controller keeps the history query equal to the encoded filter state. The
// filter state is the only source of truth, the url is read back only on
// Mount and HydrateFromURL.
type Controller struct {
	mu      sync.Mutex
	history History
	phase   Phase
	logger  *slog.Logger
}

func NewController(history History, logger *slog.Logger) *Controller {
	return &Controller{
		history: history,
		phase:   Hydrating,
		logger:  logger,
	}
}

func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Mount returns the initial filter state. A non empty query is decoded and
// not written back, otherwise the defaults are used and projected once.
func (c *Controller) Mount() types.FilterState {
	return c.absorb("mount")
}

// HydrateFromURL reads the current query again, used after navigation made
// outside the engine. It follows the rules of Mount, so an empty url gets the
// defaults projected and otherwise stays untouched.
func (c *Controller) HydrateFromURL() types.FilterState {
	return c.absorb("navigation")
}

func (c *Controller) absorb(source string) types.FilterState {
	c.mu.Lock()
	c.phase = Hydrating
	query := c.history.Query()
	if query != "" {
		state := c.hydrate(query, source)
		c.finishHydration()
		c.mu.Unlock()
		return state
	}
	noHydrations.WithLabelValues("defaults").Inc()
	c.finishHydration()
	c.mu.Unlock()

	state := types.DefaultFilterState()
	if _, err := c.Publish(state); err != nil {
		c.logger.Warn("failed to project default filters", "source", source, "error", err)
	}
	return state
}

func (c *Controller) hydrate(query, source string) types.FilterState {
	noHydrations.WithLabelValues(source).Inc()
	state, err := urlstate.Decode(query)
	if err != nil {
		c.logger.Warn("query partially decoded", "query", query, "error", err)
	}
	return state.Canonical()
}

func (c *Controller) finishHydration() {
	c.phase = Synced
}

// Publish projects state onto the history. It returns true when the entry
// was replaced, nothing is written while hydrating or when the query would not change.
func (c *Controller) Publish(state types.FilterState) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != Synced {
		return false, nil
	}
	query, err := urlstate.Encode(state)
	if err != nil {
		return false, fmt.Errorf("encode filters: %w", err)
	}
	if query == c.history.Query() {
		return false, nil
	}
	if err := c.history.Replace(query); err != nil {
		return false, fmt.Errorf("replace history: %w", err)
	}
	noReplacements.Inc()
	return true, nil
}

func (c *Controller) Query() string {
	return c.history.Query()
}
