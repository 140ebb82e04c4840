package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-collection-cache/collectioncache"
)

// Config holds the dependencies of the router.
type Config struct {
	Proxy          *collectioncache.Proxy
	Logger         zerolog.Logger
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
}

// NewRouter mounts the collection and invalidation endpoints, /healthz and,
// when a gatherer is given, /metrics.
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestID(cfg.Logger))
	r.Use(Recovery)
	r.Use(Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/healthz", Health)
	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	h := NewHandler(cfg.Proxy)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/collections/{name}", h.ClassCollection)
		r.Get("/companies/{id}/collections/{name}", h.InstanceCollection)

		r.Route("/cache", func(r chi.Router) {
			r.Delete("/", h.ClearAll)
			r.Delete("/class", h.ClearClass)
			r.Delete("/instances", h.ClearInstances)
		})
	})

	return r
}
