package server

import (
	"github.com/matst80/casa-finder/pkg/filter"
	"github.com/matst80/casa-finder/pkg/types"
	"github.com/paulmach/orb"
)

type Bounds struct {
	MinLat float64 `json:"minLat"`
	MinLng float64 `json:"minLng"`
	MaxLat float64 `json:"maxLat"`
	MaxLng float64 `json:"maxLng"`
}

func boundsFrom(b orb.Bound, items int) *Bounds {
	if items == 0 {
		return nil
	}
	return &Bounds{
		MinLat: b.Min.Lat(),
		MinLng: b.Min.Lon(),
		MaxLat: b.Max.Lat(),
		MaxLng: b.Max.Lon(),
	}
}

type SearchResponse struct {
	Items           []types.Property      `json:"items"`
	TotalHits       int                   `json:"totalHits"`
	Filters         types.BasicFilters    `json:"filters"`
	AdvancedFilters types.AdvancedFilters `json:"advancedFilters"`
	SortBy          types.SortKey         `json:"sortBy"`
	Favorites       []types.PropertyId    `json:"favorites"`
	IsLoading       bool                  `json:"isLoading"`
	Query           string                `json:"query"`
	Bounds          *Bounds               `json:"bounds"`
	Diagnostics     []filter.BoundError   `json:"diagnostics,omitempty"`
}

type FilterUpdate struct {
	Key   string       `json:"key"`
	Value types.Tokens `json:"value"`
}

type FavoritesResponse struct {
	Id        types.PropertyId   `json:"id,omitempty"`
	Favorite  bool               `json:"favorite"`
	Favorites []types.PropertyId `json:"favorites"`
}
