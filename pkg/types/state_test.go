package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultFilterState(t *testing.T) {
	s := DefaultFilterState()
	assert.Equal(t, Tokens{ContractSale}, s.Basic.ContractType)
	assert.NotNil(t, s.Basic.City)
	assert.NotNil(t, s.Basic.AreaMax)
	assert.NotNil(t, s.Advanced.Zones)
	assert.True(t, s.Advanced.IsEmpty())
	assert.False(t, s.Basic.IsEmpty())
}

func TestSetBasicFilter(t *testing.T) {
	s := NewFilterState()
	next, err := s.WithFilter("city", "Milano", "", "Roma", "Milano")
	require.NoError(t, err)
	assert.Equal(t, Tokens{"Milano", "Roma"}, next.Basic.City)
	assert.Empty(t, s.Basic.City, "original state must not change")

	next, err = next.WithFilter("keyword", "villa")
	require.NoError(t, err)
	assert.Equal(t, "villa", next.Basic.Keyword)

	next, err = next.WithFilter("city")
	require.NoError(t, err)
	assert.NotNil(t, next.Basic.City)
	assert.Empty(t, next.Basic.City)

	_, err = next.WithFilter("garden", "yes")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}

func TestCanonicalFoldsSharedConcerns(t *testing.T) {
	s := NewFilterState()
	s.Basic.PropertyType = Tokens{"villa"}
	s.Basic.Bedrooms = Tokens{"2"}
	s.Basic.City = Tokens{"Roma"}

	adv := NewAdvancedFilters()
	adv.PropertyType = Tokens{"attico"}
	adv.ContractType = ContractRent
	adv.Area = "80"
	adv.AreaMax = "500+"
	adv.PriceMin = "100000"
	adv.Zones = Tokens{"centro"}

	c := s.WithAdvanced(adv).Canonical()
	assert.Equal(t, Tokens{"attico"}, c.Basic.PropertyType)
	assert.Equal(t, Tokens{ContractRent}, c.Basic.ContractType)
	assert.Equal(t, Tokens{"80"}, c.Basic.AreaMin)
	assert.Equal(t, Tokens{"500+"}, c.Basic.AreaMax)
	assert.Equal(t, Tokens{"2"}, c.Basic.Bedrooms, "untouched when the advanced value is empty")
	assert.Equal(t, Tokens{"Roma"}, c.Basic.City)

	assert.Empty(t, c.Advanced.PropertyType)
	assert.Empty(t, c.Advanced.ContractType)
	assert.Empty(t, c.Advanced.Area)
	assert.Empty(t, c.Advanced.AreaMax)
	assert.Equal(t, "100000", c.Advanced.PriceMin)
	assert.Equal(t, Tokens{"centro"}, c.Advanced.Zones)

	assert.True(t, c.Equal(c.Canonical()), "canonical is idempotent")
}

func TestWithAdvancedKeepsBothRecords(t *testing.T) {
	s := NewFilterState()
	s.Basic.PropertyType = Tokens{"villa"}

	adv := NewAdvancedFilters()
	adv.PropertyType = Tokens{"attico"}
	adv.Bedrooms = "3+"

	next := s.WithAdvanced(adv)
	assert.Equal(t, Tokens{"villa"}, next.Basic.PropertyType)
	assert.Equal(t, Tokens{"attico"}, next.Advanced.PropertyType)
	assert.Equal(t, "3+", next.Advanced.Bedrooms)
	assert.Empty(t, next.Basic.Bedrooms)
	assert.Equal(t, Tokens{"attico"}, next.Canonical().Basic.PropertyType)
}

func TestClearAdvanced(t *testing.T) {
	s := DefaultFilterState()
	s.Advanced.PriceMax = "200000"
	s.Advanced.Amenities = Tokens{"piscina"}
	c := s.ClearAdvanced()
	assert.True(t, c.Advanced.IsEmpty())
	assert.Equal(t, s.Basic, c.Basic)
	assert.Equal(t, "200000", s.Advanced.PriceMax)
}

func TestTokensJson(t *testing.T) {
	var b BasicFilters
	require.NoError(t, json.Unmarshal([]byte(`{"keyword":"mare","city":"Roma","propertyType":["villa",""]}`), &b))
	b.Normalize()
	assert.Equal(t, Tokens{"Roma"}, b.City)
	assert.Equal(t, Tokens{"villa"}, b.PropertyType)
	assert.NotNil(t, b.Bedrooms)

	data, err := json.Marshal(NewBasicFilters())
	require.NoError(t, err)
	assert.Contains(t, string(data), `"city":[]`)
}

func TestSplitTokens(t *testing.T) {
	assert.Equal(t, Tokens{"Roma", "Napoli"}, SplitTokens(" Roma,,Napoli ,"))
	assert.Equal(t, Tokens{}, SplitTokens(""))
}

func TestParseSortKey(t *testing.T) {
	assert.Equal(t, SortPriceDesc, ParseSortKey("price_desc"))
	assert.Equal(t, SortDefault, ParseSortKey("popular"))
	assert.Equal(t, SortDefault, ParseSortKey(""))
}
