package urlsync

import (
	"strings"
	"sync"
)

// History is the address bar of a session. Entries are only ever replaced,
// refining a search must not add back button stops.
type History interface {
	Query() string
	Replace(query string) error
}

type MemoryHistory struct {
	mu           sync.RWMutex
	query        string
	replacements int
}

func NewMemoryHistory(query string) *MemoryHistory {
	return &MemoryHistory{query: strings.TrimPrefix(query, "?")}
}

func (h *MemoryHistory) Query() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.query
}

func (h *MemoryHistory) Replace(query string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.query = strings.TrimPrefix(query, "?")
	h.replacements++
	return nil
}

// Navigate changes the query from outside the engine, like back/forward in a
// browser. It is not counted as a replacement and is not observed until
// the controller is asked to hydrate.
func (h *MemoryHistory) Navigate(query string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.query = strings.TrimPrefix(query, "?")
}

func (h *MemoryHistory) Replacements() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.replacements
}

// Navigator is a History that can also be moved from outside the engine.
type Navigator interface {
	History
	Navigate(query string)
}
