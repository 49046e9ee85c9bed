package types

type SortKey string

const (
	SortDefault      = SortKey("default")
	SortPriceAsc     = SortKey("price_asc")
	SortPriceDesc    = SortKey("price_desc")
	SortAreaAsc      = SortKey("area_asc")
	SortAreaDesc     = SortKey("area_desc")
	SortBedroomsAsc  = SortKey("bedrooms_asc")
	SortBedroomsDesc = SortKey("bedrooms_desc")
	SortNewest       = SortKey("newest")
)

var SortKeys = []SortKey{
	SortDefault,
	SortPriceAsc,
	SortPriceDesc,
	SortAreaAsc,
	SortAreaDesc,
	SortBedroomsAsc,
	SortBedroomsDesc,
	SortNewest,
}

func (s SortKey) IsValid() bool {
	for _, k := range SortKeys {
		if k == s {
			return true
		}
	}
	return false
}

// ParseSortKey falls back to SortDefault for unknown values.
func ParseSortKey(value string) SortKey {
	key := SortKey(value)
	if key.IsValid() {
		return key
	}
	return SortDefault
}
