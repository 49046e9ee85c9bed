package tracking

import (
	"net/http"

	"github.com/matst80/casa-finder/pkg/types"
)

// Tracking receives user events. Implementations must not block the request.
type Tracking interface {
	TrackSession(sessionId string, r *http.Request)
	TrackSearch(sessionId string, search SearchEvent)
	TrackFavorite(sessionId string, id types.PropertyId, added bool)
	Close() error
}

type SearchEvent struct {
	Filters         types.BasicFilters    `json:"filters"`
	AdvancedFilters types.AdvancedFilters `json:"advancedFilters"`
	SortBy          types.SortKey         `json:"sortBy"`
	Query           string                `json:"query"`
	NumberOfResults int                   `json:"noi"`
	Referer         string                `json:"referer,omitempty"`
}
