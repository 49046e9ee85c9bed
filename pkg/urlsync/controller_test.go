package urlsync

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/matst80/casa-finder/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestMountWithQueryDoesNotWrite(t *testing.T) {
	h := NewMemoryHistory("?city=Roma%2CNapoli&search=mare")
	c := NewController(h, discard)
	assert.Equal(t, Hydrating, c.Phase())

	state := c.Mount()
	assert.Equal(t, Synced, c.Phase())
	assert.Equal(t, "mare", state.Basic.Keyword)
	assert.Equal(t, types.Tokens{"Roma", "Napoli"}, state.Basic.City)
	assert.Empty(t, state.Basic.ContractType, "defaults only apply to an empty query")
	assert.Equal(t, 0, h.Replacements())

	replaced, err := c.Publish(state)
	require.NoError(t, err)
	assert.False(t, replaced, "an equivalent url is not rewritten")
	assert.Equal(t, 0, h.Replacements())
}

func TestMountWithoutQueryWritesDefaults(t *testing.T) {
	h := NewMemoryHistory("")
	c := NewController(h, discard)
	state := c.Mount()

	assert.Equal(t, types.DefaultFilterState(), state)
	assert.Equal(t, Synced, c.Phase())
	assert.Equal(t, 1, h.Replacements())
	assert.Equal(t, "contract=vendita", h.Query())
}

func TestPublishOnlyReplacesOnChange(t *testing.T) {
	h := NewMemoryHistory("")
	c := NewController(h, discard)
	state := c.Mount()

	state, err := state.WithFilter("city", "Milano")
	require.NoError(t, err)
	replaced, err := c.Publish(state)
	require.NoError(t, err)
	assert.True(t, replaced)
	assert.Equal(t, "city=Milano&contract=vendita", c.Query())

	replaced, err = c.Publish(state.Clone())
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.Equal(t, 2, h.Replacements())
}

func TestPublishIsIgnoredWhileHydrating(t *testing.T) {
	h := NewMemoryHistory("city=Roma")
	c := NewController(h, discard)
	replaced, err := c.Publish(types.NewFilterState())
	require.NoError(t, err)
	assert.False(t, replaced)
	assert.Equal(t, "city=Roma", h.Query())
}

func TestExternalNavigationNeedsExplicitHydrate(t *testing.T) {
	h := NewMemoryHistory("city=Roma")
	c := NewController(h, discard)
	state := c.Mount()

	h.Navigate("?city=Torino&priceMax=300000")
	assert.Equal(t, types.Tokens{"Roma"}, state.Basic.City)

	state = c.HydrateFromURL()
	assert.Equal(t, Synced, c.Phase())
	assert.Equal(t, types.Tokens{"Torino"}, state.Basic.City)
	assert.Equal(t, "300000", state.Advanced.PriceMax)
	assert.Equal(t, 0, h.Replacements())
}

func TestNavigationToEmptyUrlProjectsDefaults(t *testing.T) {
	h := NewMemoryHistory("city=Roma")
	c := NewController(h, discard)
	c.Mount()

	h.Navigate("")
	state := c.HydrateFromURL()
	assert.Equal(t, types.DefaultFilterState(), state)
	assert.Equal(t, Synced, c.Phase())
	assert.Equal(t, "contract=vendita", h.Query())
	assert.Equal(t, 1, h.Replacements())

	replaced, err := c.Publish(state)
	require.NoError(t, err)
	assert.False(t, replaced)
}

func TestMalformedQueryStillHydrates(t *testing.T) {
	h := NewMemoryHistory("city=Roma&bad=%zz")
	state := NewController(h, discard).Mount()
	assert.Equal(t, types.Tokens{"Roma"}, state.Basic.City)
}

type brokenHistory struct{ MemoryHistory }

func (b *brokenHistory) Replace(string) error {
	return errors.New("history unavailable")
}

func TestReplaceFailure(t *testing.T) {
	c := NewController(&brokenHistory{}, discard)
	c.Mount()
	_, err := c.Publish(types.NewFilterState().WithAdvanced(types.AdvancedFilters{PriceMin: "1"}))
	assert.Error(t, err)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "hydrating", Hydrating.String())
	assert.Equal(t, "synced", Synced.String())
}
