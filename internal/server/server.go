// Package server exposes the quote pipeline and the simulation engine as a
// small JSON API with permissive CORS, so a static dashboard frontend can be
// served from anywhere.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"DividendDash/internal/cache"
	"DividendDash/internal/config"
	"DividendDash/internal/quote"
	"DividendDash/internal/recorder"
)

// Server holds the API's collaborators.
type Server struct {
	fetcher   *quote.Fetcher
	store     *cache.Store
	recorder  recorder.Recorder
	tickers   []string
	opts      quote.FetchOptions
	scenarios []config.Scenario
	log       zerolog.Logger
}

// New creates the API server. store may be nil when caching is disabled.
func New(f *quote.Fetcher, store *cache.Store, rec recorder.Recorder,
	tickers []string, opts quote.FetchOptions, scenarios []config.Scenario, log zerolog.Logger) *Server {
	return &Server{
		fetcher:   f,
		store:     store,
		recorder:  rec,
		tickers:   tickers,
		opts:      opts,
		scenarios: scenarios,
		log:       log.With().Str("component", "server").Logger(),
	}
}

// Router builds the chi router with CORS and all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/quotes", s.handleQuotes)
		r.Get("/stats", s.handleStats)
		r.Get("/cache", s.handleCacheInfo)
		r.Delete("/cache", s.handleCacheClear)
		r.Post("/simulate", s.handleSimulate)
		r.Post("/simulate/scenarios", s.handleSimulateScenarios)
	})
	return r
}
