package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/saltyorg/foodquery/internal/database"
)

// Store is the read side of the database the handlers query
type Store interface {
	ListRestaurants(ctx context.Context) ([]database.Row, error)
	RestaurantsByID(ctx context.Context, id string) ([]database.Row, error)
	RestaurantsByCuisine(ctx context.Context, cuisine string) ([]database.Row, error)
	RestaurantsByFilter(ctx context.Context, f database.RestaurantFilter) ([]database.Row, error)
	RestaurantsByRating(ctx context.Context) ([]database.Row, error)
	ListDishes(ctx context.Context) ([]database.Row, error)
	DishesByID(ctx context.Context, id string) ([]database.Row, error)
	DishesByFilter(ctx context.Context, isVeg *string) ([]database.Row, error)
	DishesByPrice(ctx context.Context) ([]database.Row, error)
}

// Collection keys used in success envelopes
const (
	keyRestaurants = "restaurants"
	keyDishes      = "dishes"
)

// VersionInfo holds application version information
type VersionInfo struct {
	Version    string `json:"version"`
	Commit     string `json:"commit"`
	InstanceID string `json:"instance_id"`
}

// Handlers contains all HTTP handlers
type Handlers struct {
	store       Store
	health      HealthReporter
	versionInfo VersionInfo
}

// New creates a new Handlers instance. health may be nil, in which case
// /healthz always reports ok.
func New(store Store, health HealthReporter) *Handlers {
	return &Handlers{
		store:  store,
		health: health,
	}
}

// SetVersionInfo sets the version details reported by /healthz
func (h *Handlers) SetVersionInfo(info VersionInfo) {
	h.versionInfo = info
}

// respond applies the envelope shared by every query route: a failure is a
// 500 carrying the raw error, no rows is a 404 with notFound as message, and
// anything else is a 200 with the rows under key.
func (h *Handlers) respond(w http.ResponseWriter, r *http.Request, key string, rows []database.Row, err error, notFound string) {
	if err != nil {
		log.Error().
			Err(err).
			Str("path", r.URL.Path).
			Msg("Query failed")
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if len(rows) == 0 {
		log.Trace().Str("path", r.URL.Path).Msg("Query matched no rows")
		h.jsonResponse(w, http.StatusNotFound, map[string]string{"message": notFound})
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string][]database.Row{key: rows})
}

// jsonResponse writes data as JSON with the given status code
func (h *Handlers) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// jsonError sends a JSON error response
func (h *Handlers) jsonError(w http.ResponseWriter, message string, status int) {
	h.jsonResponse(w, status, map[string]string{"error": message})
}

// pathParam returns a decoded route parameter. chi matches on RawPath when
// the request carried one, leaving escapes like %3D in the value.
func pathParam(r *http.Request, name string) string {
	v := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return v
	}
	if decoded, err := url.PathUnescape(v); err == nil {
		return decoded
	}
	return v
}

// queryParam returns the named query parameter, or nil when the caller did
// not supply it at all. An empty value is still a supplied value.
func queryParam(r *http.Request, name string) *string {
	q := r.URL.Query()
	if !q.Has(name) {
		return nil
	}
	v := q.Get(name)
	return &v
}

// echo renders an optional parameter for a not-found message
func echo(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
