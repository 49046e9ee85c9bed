package server

import (
	"log/slog"
	"net/http"
	"net/http/pprof"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/matst80/casa-finder/pkg/search"
	"github.com/matst80/casa-finder/pkg/tracking"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	noRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "casa_finder_http_requests_total",
		Help: "The total number of api requests",
	}, []string{"route", "status"})
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "casa_finder_http_request_duration_seconds",
		Help:    "Duration of api requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
)

type WebServer struct {
	Sessions       *search.Registry
	Tracking       tracking.Tracking
	Logger         *slog.Logger
	AllowedOrigins []string
}

func NewWebServer(sessions *search.Registry, trk tracking.Tracking, logger *slog.Logger, allowedOrigins []string) *WebServer {
	return &WebServer{
		Sessions:       sessions,
		Tracking:       trk,
		Logger:         logger,
		AllowedOrigins: allowedOrigins,
	}
}

// requestMiddleware logs and counts requests by route pattern.
func requestMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			duration := time.Since(start)
			noRequests.WithLabelValues(route, strconv.Itoa(ww.Status())).Inc()
			requestDuration.WithLabelValues(route).Observe(duration.Seconds())
			logger.Debug("request finished",
				"method", r.Method,
				"route", route,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", duration.Milliseconds())
		})
	}
}

// Router returns the api handler.
func (ws *WebServer) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(requestMiddleware(ws.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   ws.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/properties", ws.handle(ws.Properties))
		r.Get("/session", ws.handle(ws.OpenSession))
		r.Get("/results", ws.handle(ws.Results))
		r.Post("/filters", ws.handle(ws.UpdateFilter))
		r.Put("/advanced-filters", ws.handle(ws.UpdateAdvancedFilters))
		r.Delete("/advanced-filters", ws.handle(ws.ClearAdvancedFilters))
		r.Put("/sort/{key}", ws.handle(ws.SetSort))
		r.Post("/search", ws.handle(ws.Search))
		r.Post("/hydrate", ws.handle(ws.Hydrate))
		r.Get("/favorites", ws.handle(ws.Favorites))
		r.Post("/favorites/{id}", ws.handle(ws.ToggleFavorite))
	})
	return r
}

// DebugHandler serves health, metrics and optionally pprof.
func (ws *WebServer) DebugHandler(enableProfiling bool) http.Handler {
	srv := http.NewServeMux()
	srv.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	srv.Handle("/metrics", promhttp.Handler())
	if enableProfiling {
		srv.HandleFunc("/debug/pprof/", pprof.Index)
		srv.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		srv.HandleFunc("/debug/pprof/profile", pprof.Profile)
		srv.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		srv.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	return srv
}
