package filter

import (
	"testing"

	"github.com/matst80/casa-finder/pkg/catalog"
	"github.com/matst80/casa-finder/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []types.Property {
	return []types.Property{
		{Id: "p1", Title: "Attico con terrazza", Address: "Via Roma 1", City: "Milano", Region: "Lombardia", PropertyType: "attico", ContractType: "vendita", Bedrooms: 3, Bathrooms: 2, Area: 120, Price: 700000},
		{Id: "p2", Title: "Bilocale centro", Address: "Via del Corso 10", City: "Roma", Region: "Lazio", PropertyType: "appartamento", ContractType: "affitto", Bedrooms: 1, Bathrooms: 1, Area: 55, Price: 1200},
		{Id: "p3", Title: "Casa sul lago", Address: "Lungolago 4", City: "Milano", Region: "Lombardia", PropertyType: "casa-indipendente", ContractType: "vendita", Bedrooms: 5, Bathrooms: 4, Area: 500, Price: 1200000},
		{Id: "p4", Title: "Grande tenuta", Address: "Strada Chianti 2", City: "Siena", Region: "Toscana", PropertyType: "Villa", ContractType: "vendita", Bedrooms: 50, Bathrooms: 12, Area: 100000, Price: 300000, PriceHidden: true},
	}
}

func state(fn func(s *types.FilterState)) types.FilterState {
	s := types.NewFilterState()
	fn(&s)
	return s
}

func TestCityFilterKeepsOrder(t *testing.T) {
	items := []types.Property{
		{Id: "a", City: "Milano"},
		{Id: "b", City: "Roma"},
		{Id: "c", City: "Milano"},
	}
	res := Apply(items, state(func(s *types.FilterState) { s.Basic.City = types.Tokens{"milano"} }))
	assert.Equal(t, []types.PropertyId{"a", "c"}, types.Ids(res.Items))
}

func TestKeywordMatchesPropertyType(t *testing.T) {
	res := Apply(sampleItems(), state(func(s *types.FilterState) { s.Basic.Keyword = "villa" }))
	assert.Equal(t, []types.PropertyId{"p4"}, types.Ids(res.Items))

	res = Apply(sampleItems(), state(func(s *types.FilterState) { s.Basic.Keyword = "  LOMBARDIA " }))
	assert.Equal(t, []types.PropertyId{"p1", "p3"}, types.Ids(res.Items))

	res = Apply(sampleItems(), state(func(s *types.FilterState) { s.Basic.Keyword = "p2" }))
	assert.Equal(t, []types.PropertyId{"p2"}, types.Ids(res.Items))
}

func TestPriceRange(t *testing.T) {
	items := []types.Property{{Id: "a", Price: 300000}, {Id: "b", Price: 700000}, {Id: "c", Price: 1200000}}
	res := Apply(items, state(func(s *types.FilterState) {
		s.Advanced.PriceMin = "500000"
		s.Advanced.PriceMax = "1000000"
	}))
	assert.Equal(t, []types.PropertyId{"b"}, types.Ids(res.Items))
	assert.Empty(t, res.Diagnostics)
}

func TestHiddenPriceIsStillCompared(t *testing.T) {
	res := Apply(sampleItems(), state(func(s *types.FilterState) { s.Advanced.PriceMax = "400000" }))
	assert.Equal(t, []types.PropertyId{"p2", "p4"}, types.Ids(res.Items))
}

func TestNeutralFiltersReturnEverything(t *testing.T) {
	items := sampleItems()
	res := Apply(items, types.NewFilterState())
	assert.Equal(t, types.Ids(items), types.Ids(res.Items))
}

func TestPropertyTypeNormalization(t *testing.T) {
	res := Apply(sampleItems(), state(func(s *types.FilterState) { s.Basic.PropertyType = types.Tokens{"Casa Indipendente", "villa"} }))
	assert.Equal(t, []types.PropertyId{"p3", "p4"}, types.Ids(res.Items))
}

func TestContractBothDisablesStage(t *testing.T) {
	res := Apply(sampleItems(), state(func(s *types.FilterState) { s.Basic.ContractType = types.Tokens{"affitto"} }))
	assert.Equal(t, []types.PropertyId{"p2"}, types.Ids(res.Items))

	res = Apply(sampleItems(), state(func(s *types.FilterState) { s.Basic.ContractType = types.Tokens{"affitto", types.ContractBoth} }))
	assert.Len(t, res.Items, 4)
}

func TestBucketBoundaries(t *testing.T) {
	res := Apply(sampleItems(), state(func(s *types.FilterState) { s.Basic.Bedrooms = types.Tokens{"5+"} }))
	assert.Equal(t, []types.PropertyId{"p3", "p4"}, types.Ids(res.Items))

	res = Apply(sampleItems(), state(func(s *types.FilterState) { s.Basic.Bedrooms = types.Tokens{"1", "3"} }))
	assert.Equal(t, []types.PropertyId{"p1", "p2"}, types.Ids(res.Items))

	res = Apply(sampleItems(), state(func(s *types.FilterState) { s.Basic.Bathrooms = types.Tokens{"4+"} }))
	assert.Equal(t, []types.PropertyId{"p3", "p4"}, types.Ids(res.Items))

	res = Apply(sampleItems(), state(func(s *types.FilterState) { s.Basic.AreaMax = types.Tokens{"500+"} }))
	assert.Equal(t, []types.PropertyId{"p3", "p4"}, types.Ids(res.Items))
}

func TestAreaBoundsCombine(t *testing.T) {
	res := Apply(sampleItems(), state(func(s *types.FilterState) {
		s.Basic.AreaMin = types.Tokens{"100"}
		s.Basic.AreaMax = types.Tokens{"500"}
	}))
	assert.Equal(t, []types.PropertyId{"p1", "p3"}, types.Ids(res.Items))
}

func TestBasicAndAdvancedBothApply(t *testing.T) {
	res := Apply(sampleItems(), state(func(s *types.FilterState) {
		s.Basic.PropertyType = types.Tokens{"attico"}
		s.Advanced.PropertyType = types.Tokens{"villa"}
	}))
	assert.Empty(t, res.Items)

	res = Apply(sampleItems(), state(func(s *types.FilterState) {
		s.Basic.City = types.Tokens{"Milano"}
		s.Advanced.Bedrooms = "5+"
		s.Advanced.ContractType = "vendita"
	}))
	assert.Equal(t, []types.PropertyId{"p3"}, types.Ids(res.Items))
}

func TestLocation(t *testing.T) {
	res := Apply(sampleItems(), state(func(s *types.FilterState) { s.Basic.Location = types.Tokens{"toscana"} }))
	assert.Equal(t, []types.PropertyId{"p4"}, types.Ids(res.Items))

	res = Apply(sampleItems(), state(func(s *types.FilterState) { s.Advanced.Location = types.Tokens{"via del corso"} }))
	assert.Equal(t, []types.PropertyId{"p2"}, types.Ids(res.Items))
}

func TestInvalidBoundIsIgnored(t *testing.T) {
	res := Apply(sampleItems(), state(func(s *types.FilterState) {
		s.Advanced.PriceMin = "cheap"
		s.Basic.Bedrooms = types.Tokens{"many", "1"}
	}))
	assert.Equal(t, []types.PropertyId{"p2"}, types.Ids(res.Items))
	require.Len(t, res.Diagnostics, 2)
	assert.Contains(t, res.Diagnostics, BoundError{Field: "priceMin", Value: "cheap"})
	assert.Contains(t, res.Diagnostics, BoundError{Field: "bedrooms", Value: "many"})

	res = Apply(sampleItems(), state(func(s *types.FilterState) { s.Basic.AreaMin = types.Tokens{"big"} }))
	assert.Len(t, res.Items, 4)
}

func TestNonFiniteBoundIsIgnored(t *testing.T) {
	res := Apply(sampleItems(), state(func(s *types.FilterState) { s.Advanced.PriceMin = "NaN" }))
	assert.Len(t, res.Items, 4)
	assert.Equal(t, []BoundError{{Field: "priceMin", Value: "NaN"}}, res.Diagnostics)

	res = Apply(sampleItems(), state(func(s *types.FilterState) {
		s.Basic.Bedrooms = types.Tokens{"Inf"}
		s.Basic.AreaMax = types.Tokens{"+Inf"}
		s.Advanced.PriceMax = "-inf"
	}))
	assert.Len(t, res.Items, 4)
	require.Len(t, res.Diagnostics, 3)
	assert.Contains(t, res.Diagnostics, BoundError{Field: "bedrooms", Value: "Inf"})
	assert.Contains(t, res.Diagnostics, BoundError{Field: "priceMax", Value: "-inf"})

	res = Apply(sampleItems(), state(func(s *types.FilterState) { s.Basic.AreaMin = types.Tokens{"nan"} }))
	assert.Len(t, res.Items, 4)
	assert.Len(t, res.Diagnostics, 1)
}

func TestInertAdvancedFilters(t *testing.T) {
	res := Apply(sampleItems(), state(func(s *types.FilterState) {
		s.Advanced.Zones = types.Tokens{"centro"}
		s.Advanced.Features = types.Tokens{"giardino"}
		s.Advanced.Amenities = types.Tokens{"piscina"}
		s.Advanced.EnergyRating = types.Tokens{"A"}
		s.Advanced.TransportProximity = types.Tokens{"metro"}
		s.Advanced.SchoolDistrict = "nord"
		s.Advanced.YearMin = "2020"
		s.Advanced.YearMax = "not a year"
		s.Advanced.PropertyCondition = "nuovo"
	}))
	assert.Len(t, res.Items, 4)
	assert.Empty(t, res.Diagnostics)
}

func TestResultIsSubsetOfCatalog(t *testing.T) {
	items := sampleItems()
	ids := map[types.PropertyId]bool{}
	for _, p := range items {
		ids[p.Id] = true
	}
	states := []types.FilterState{
		types.DefaultFilterState(),
		state(func(s *types.FilterState) { s.Basic.Keyword = "a" }),
		state(func(s *types.FilterState) {
			s.Basic.City = types.Tokens{"Milano", "Siena"}
			s.Advanced.PriceMin = "1"
		}),
	}
	for _, s := range states {
		for _, p := range Apply(items, s).Items {
			assert.True(t, ids[p.Id])
		}
	}
}

func TestMemo(t *testing.T) {
	c, err := catalog.New(sampleItems())
	require.NoError(t, err)
	m := &Memo{}

	s := state(func(s *types.FilterState) { s.Basic.City = types.Tokens{"Milano"} })
	first, g1 := m.Apply(c, s)
	assert.Len(t, first.Items, 2)

	_, g2 := m.Apply(c, s.Clone())
	assert.Equal(t, g1, g2, "same inputs must not recompute")

	m.Invalidate()
	_, g3 := m.Apply(c, s)
	assert.Greater(t, g3, g2)

	other := state(func(s *types.FilterState) { s.Basic.City = types.Tokens{"Roma"} })
	res, g4 := m.Apply(c, other)
	assert.Greater(t, g4, g3)
	assert.Equal(t, []types.PropertyId{"p2"}, types.Ids(res.Items))

	c2, err := catalog.New(sampleItems())
	require.NoError(t, err)
	_, g5 := m.Apply(c2, other)
	assert.Greater(t, g5, g4, "a new catalog reference recomputes")
}
