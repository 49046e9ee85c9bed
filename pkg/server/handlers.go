package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/matst80/casa-finder/pkg/catalog"
	"github.com/matst80/casa-finder/pkg/common"
	"github.com/matst80/casa-finder/pkg/filter"
	"github.com/matst80/casa-finder/pkg/search"
	"github.com/matst80/casa-finder/pkg/sorting"
	"github.com/matst80/casa-finder/pkg/tracking"
	"github.com/matst80/casa-finder/pkg/types"
	"github.com/matst80/casa-finder/pkg/urlstate"
)

type jsonHandlerFunc func(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error

func (ws *WebServer) handle(fn jsonHandlerFunc) http.HandlerFunc {
	var starter common.SessionStarter
	if ws.Tracking != nil {
		starter = ws.Tracking
	}
	return common.JsonHandler(starter, ws.Logger, fn)
}

func badRequest(err error) error {
	return common.NewHttpError(http.StatusBadRequest, err)
}

func (ws *WebServer) session(r *http.Request, sessionId string) *search.Session {
	s, _ := ws.Sessions.Open(r.Context(), sessionId, "")
	return s
}

func (ws *WebServer) snapshot(s *search.Session) SearchResponse {
	items := s.FilteredProperties()
	return SearchResponse{
		Items:           items,
		TotalHits:       len(items),
		Filters:         s.Filters(),
		AdvancedFilters: s.AdvancedFilters(),
		SortBy:          s.SortBy(),
		Favorites:       s.Favorites(),
		IsLoading:       s.IsLoading(),
		Query:           s.Query(),
		Bounds:          boundsFrom(catalog.Bounds(items), len(items)),
		Diagnostics:     s.Diagnostics(),
	}
}

func (ws *WebServer) trackSearch(r *http.Request, sessionId string, res *SearchResponse) {
	if ws.Tracking == nil {
		return
	}
	ws.Tracking.TrackSearch(sessionId, tracking.SearchEvent{
		Filters:         res.Filters,
		AdvancedFilters: res.AdvancedFilters,
		SortBy:          res.SortBy,
		Query:           res.Query,
		NumberOfResults: res.TotalHits,
		Referer:         r.Header.Get("Referer"),
	})
}

func (ws *WebServer) respond(w http.ResponseWriter, r *http.Request, sessionId string, s *search.Session, enc *json.Encoder, track bool) error {
	res := ws.snapshot(s)
	if track {
		ws.trackSearch(r, sessionId, &res)
	}
	w.WriteHeader(http.StatusOK)
	return enc.Encode(res)
}

// Properties filters and sorts the catalog from the request query alone, no
// session state is read or changed.
func (ws *WebServer) Properties(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error {
	values := r.URL.Query()
	sortBy := types.ParseSortKey(values.Get("sort"))
	values.Del("sort")
	state, err := urlstate.DecodeValues(values)
	if err != nil {
		ws.Logger.Debug("query partially decoded", "query", r.URL.RawQuery, "error", err)
	}
	state = state.Canonical()
	query, err := urlstate.Encode(state)
	if err != nil {
		return err
	}
	c := ws.Sessions.Catalog()
	var all []types.Property
	if c != nil {
		all = c.All()
	}
	res := filter.Apply(all, state)
	items := sorting.Sort(res.Items, sortBy)
	w.WriteHeader(http.StatusOK)
	return enc.Encode(SearchResponse{
		Items:           items,
		TotalHits:       len(items),
		Filters:         state.Basic,
		AdvancedFilters: state.Advanced,
		SortBy:          sortBy,
		Favorites:       []types.PropertyId{},
		IsLoading:       c == nil,
		Query:           query,
		Bounds:          boundsFrom(catalog.Bounds(items), len(items)),
		Diagnostics:     res.Diagnostics,
	})
}

// OpenSession mounts the session from the page query. An existing session is
// returned unchanged.
func (ws *WebServer) OpenSession(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error {
	s, created := ws.Sessions.Open(r.Context(), sessionId, r.URL.RawQuery)
	return ws.respond(w, r, sessionId, s, enc, created)
}

func (ws *WebServer) Results(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error {
	return ws.respond(w, r, sessionId, ws.session(r, sessionId), enc, false)
}

func (ws *WebServer) UpdateFilter(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error {
	var update FilterUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		return badRequest(fmt.Errorf("invalid filter update: %w", err))
	}
	s := ws.session(r, sessionId)
	if err := s.UpdateFilter(update.Key, update.Value...); err != nil {
		if errors.Is(err, types.ErrUnknownFilter) {
			return badRequest(err)
		}
		return err
	}
	return ws.respond(w, r, sessionId, s, enc, true)
}

func (ws *WebServer) UpdateAdvancedFilters(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error {
	advanced := types.NewAdvancedFilters()
	if err := json.NewDecoder(r.Body).Decode(&advanced); err != nil {
		return badRequest(fmt.Errorf("invalid advanced filters: %w", err))
	}
	s := ws.session(r, sessionId)
	s.UpdateAdvancedFilters(advanced)
	return ws.respond(w, r, sessionId, s, enc, true)
}

func (ws *WebServer) ClearAdvancedFilters(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error {
	s := ws.session(r, sessionId)
	s.ClearAdvancedFilters()
	return ws.respond(w, r, sessionId, s, enc, true)
}

func (ws *WebServer) SetSort(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error {
	key := types.SortKey(chi.URLParam(r, "key"))
	if !key.IsValid() {
		return badRequest(fmt.Errorf("unknown sort key %q", key))
	}
	s := ws.session(r, sessionId)
	s.SetSortBy(key)
	return ws.respond(w, r, sessionId, s, enc, false)
}

// Search recomputes the result even when no filter changed.
func (ws *WebServer) Search(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error {
	s := ws.session(r, sessionId)
	s.Search()
	return ws.respond(w, r, sessionId, s, enc, true)
}

// Hydrate replaces the session url with the request query and reads the
// filters back from it, used for back/forward navigation.
func (ws *WebServer) Hydrate(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error {
	s := ws.session(r, sessionId)
	if _, err := s.Navigate(r.URL.RawQuery); err != nil {
		return err
	}
	return ws.respond(w, r, sessionId, s, enc, true)
}

func (ws *WebServer) Favorites(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error {
	s := ws.session(r, sessionId)
	w.WriteHeader(http.StatusOK)
	return enc.Encode(FavoritesResponse{Favorites: s.Favorites()})
}

func (ws *WebServer) ToggleFavorite(w http.ResponseWriter, r *http.Request, sessionId string, enc *json.Encoder) error {
	id := types.PropertyId(chi.URLParam(r, "id"))
	if c := ws.Sessions.Catalog(); c != nil && !c.Has(id) {
		return common.NewHttpError(http.StatusNotFound, fmt.Errorf("property %q not found", id))
	}
	s := ws.session(r, sessionId)
	added, err := s.ToggleFavorite(r.Context(), id)
	if err != nil {
		return err
	}
	if ws.Tracking != nil {
		ws.Tracking.TrackFavorite(sessionId, id, added)
	}
	w.WriteHeader(http.StatusOK)
	return enc.Encode(FavoritesResponse{Id: id, Favorite: added, Favorites: s.Favorites()})
}
