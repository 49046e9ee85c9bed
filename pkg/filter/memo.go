package filter

import (
	"sync"

	"github.com/matst80/casa-finder/pkg/catalog"
	"github.com/matst80/casa-finder/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	noRecomputations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casa_finder_filter_recomputations_total",
		Help: "The total number of filter pipeline runs",
	})
	noMemoHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casa_finder_filter_memo_hits_total",
		Help: "The total number of filter results served from the memo",
	})
	noInvalidBounds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "casa_finder_invalid_filter_bounds_total",
		Help: "The total number of numeric filter values that could not be parsed",
	})
)

// Memo keeps the last pipeline result and only recomputes when the catalog
// or one of the filter records changed, or after Invalidate.
type Memo struct {
	mu         sync.Mutex
	catalog    *catalog.Catalog
	state      types.FilterState
	result     Result
	valid      bool
	generation uint64
}

// Apply returns the filtered items and the generation of the result. The
// generation changes every time the pipeline actually runs.
func (m *Memo) Apply(c *catalog.Catalog, state types.FilterState) (Result, uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.valid && m.catalog == c && m.state.Equal(state) {
		noMemoHits.Inc()
		return m.result, m.generation
	}
	var items []types.Property
	if c != nil {
		items = c.All()
	}
	m.result = Apply(items, state)
	m.catalog = c
	m.state = state.Clone()
	m.valid = true
	m.generation++
	noRecomputations.Inc()
	noInvalidBounds.Add(float64(len(m.result.Diagnostics)))
	return m.result, m.generation
}

// Invalidate forces the next Apply to run the pipeline.
func (m *Memo) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.valid = false
}

func (m *Memo) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}
