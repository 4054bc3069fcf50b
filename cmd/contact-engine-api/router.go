// Package main provides the API router setup.
package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/spherical-ai/contact-engine/cmd/contact-engine-api/handlers"
	"github.com/spherical-ai/contact-engine/internal/cache"
	"github.com/spherical-ai/contact-engine/internal/config"
	"github.com/spherical-ai/contact-engine/internal/observability"
	"github.com/spherical-ai/contact-engine/pkg/engine"
)

// NewRouter creates the API router with all routes configured.
func NewRouter(logger *observability.Logger, cfg *config.Config, eng *engine.Engine) (http.Handler, error) {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"contact-engine"}`))
	})

	cacheClient, err := newCacheClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("initialize response cache: %w", err)
	}

	matchHandler := handlers.NewMatchHandler(logger, eng, cacheClient, cfg.Cache.TTL)
	compareHandler := handlers.NewCompareHandler(logger, eng)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/match", func(r chi.Router) {
			r.Post("/title", matchHandler.MatchTitle)
			r.Post("/department", matchHandler.MatchDepartment)
			r.Post("/title/candidates", matchHandler.TitleCandidates)
			r.Post("/department/candidates", matchHandler.DepartmentCandidates)
		})
		r.Post("/compare", compareHandler.Compare)
	})

	return r, nil
}

// newCacheClient builds the response cache per configuration. The cache is
// purely an accelerator: a miss recomputes and results are identical either
// way.
func newCacheClient(cfg *config.Config) (cache.Client, error) {
	if cfg.Cache.Driver == "redis" {
		return cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries), nil
}
