package filter

import (
	"github.com/matst80/casa-finder/pkg/types"
)

type Result struct {
	Items       []types.Property `json:"items"`
	Diagnostics []BoundError     `json:"diagnostics,omitempty"`
}

func bedrooms(p *types.Property) float64  { return float64(p.Bedrooms) }
func bathrooms(p *types.Property) float64 { return float64(p.Bathrooms) }
func area(p *types.Property) float64      { return p.Area }

func single(value string) types.Tokens {
	return types.MakeTokens(value)
}

// compile builds the active stages in pipeline order, stages without a
// constraint are left out.
func compile(state types.FilterState) ([]predicate, []BoundError) {
	f := newFolder()
	d := &diagnostics{}
	b, a := &state.Basic, &state.Advanced

	stages := []predicate{
		f.keywordMatcher(b.Keyword),
		f.cityMatcher(b.City),
		f.locationMatcher(b.Location),
		f.typeMatcher(b.PropertyType),
		f.contractMatcher(b.ContractType),
		d.bucketMatcher("bedrooms", b.Bedrooms, bedrooms),
		d.bucketMatcher("bathrooms", b.Bathrooms, bathrooms),
		d.minMatcher("areaMin", b.AreaMin, area),
		d.maxMatcher("areaMax", b.AreaMax, area),

		d.scalar("priceMin", a.PriceMin, func(bound float64) predicate {
			return func(p *types.Property) bool { return p.Price >= bound }
		}),
		d.scalar("priceMax", a.PriceMax, func(bound float64) predicate {
			return func(p *types.Property) bool { return p.Price <= bound }
		}),
		f.typeMatcher(a.PropertyType),
		f.contractMatcher(single(a.ContractType)),
		d.bucketMatcher("advanced.bedrooms", single(a.Bedrooms), bedrooms),
		d.bucketMatcher("advanced.bathrooms", single(a.Bathrooms), bathrooms),
		d.minMatcher("advanced.area", single(a.Area), area),
		d.maxMatcher("advanced.areaMax", single(a.AreaMax), area),
		f.locationMatcher(a.Location),
	}

	active := stages[:0]
	for _, s := range stages {
		if s != nil {
			active = append(active, s)
		}
	}
	return active, d.errors
}

// Apply narrows the catalog items by every active constraint. The relative
// order of the items is kept and the input is never modified.
func Apply(items []types.Property, state types.FilterState) Result {
	stages, diag := compile(state)
	ret := make([]types.Property, 0, len(items))
	for i := range items {
		if matchesAll(&items[i], stages) {
			ret = append(ret, items[i])
		}
	}
	return Result{Items: ret, Diagnostics: diag}
}

func matchesAll(p *types.Property, stages []predicate) bool {
	for _, s := range stages {
		if !s(p) {
			return false
		}
	}
	return true
}
