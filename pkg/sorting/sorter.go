package sorting

import (
	"cmp"
	"slices"

	"github.com/matst80/casa-finder/pkg/types"
)

// Comparator orders two properties, ties return 0 and keep their relative order.
type Comparator func(a, b *types.Property) int

func ascending(fn func(p *types.Property) float64) Comparator {
	return func(a, b *types.Property) int {
		return cmp.Compare(fn(a), fn(b))
	}
}

func descending(fn func(p *types.Property) float64) Comparator {
	return func(a, b *types.Property) int {
		return cmp.Compare(fn(b), fn(a))
	}
}

// flagsFirst puts properties with the first flag ahead, then those with the second.
func flagsFirst(first, second func(p *types.Property) bool) Comparator {
	rank := func(p *types.Property) int {
		switch {
		case first(p):
			return 0
		case second(p):
			return 1
		}
		return 2
	}
	return func(a, b *types.Property) int {
		return cmp.Compare(rank(a), rank(b))
	}
}

func price(p *types.Property) float64    { return p.Price }
func area(p *types.Property) float64     { return p.Area }
func bedrooms(p *types.Property) float64 { return float64(p.Bedrooms) }
func isNew(p *types.Property) bool       { return p.IsNew }
func featured(p *types.Property) bool    { return p.Featured }

var comparators = map[types.SortKey]Comparator{
	types.SortDefault:      flagsFirst(featured, isNew),
	types.SortNewest:       flagsFirst(isNew, featured),
	types.SortPriceAsc:     ascending(price),
	types.SortPriceDesc:    descending(price),
	types.SortAreaAsc:      ascending(area),
	types.SortAreaDesc:     descending(area),
	types.SortBedroomsAsc:  ascending(bedrooms),
	types.SortBedroomsDesc: descending(bedrooms),
}

func GetComparator(key types.SortKey) Comparator {
	if c, ok := comparators[key]; ok {
		return c
	}
	return comparators[types.SortDefault]
}

// Sort returns a new slice ordered by key, the input is left untouched.
// The sort is stable so equal items keep their pipeline order.
func Sort(items []types.Property, key types.SortKey) []types.Property {
	ret := slices.Clone(items)
	if ret == nil {
		ret = []types.Property{}
	}
	c := GetComparator(key)
	slices.SortStableFunc(ret, func(a, b types.Property) int {
		return c(&a, &b)
	})
	return ret
}
