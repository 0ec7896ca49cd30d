package server

import (
	"github.com/go-chi/chi/v5"
)

func (s *Server) registerRoutes(r chi.Router) {
	h := s.handlers

	// Health stays outside the authenticated group so probes need no key.
	r.Get("/healthz", h.Healthz)

	r.Route("/api", func(r chi.Router) {
		r.Use(APIKeyMiddleware(s.cfg.APIKey))
		if s.cfg.MaxRequestBody > 0 {
			r.Use(MaxBodyMiddleware(s.cfg.MaxRequestBody))
		}

		// Analytics
		r.Get("/analytics/revenue-trend", h.RevenueTrend)
		r.Get("/analytics/top-profitable", h.TopProfitable)
		r.Get("/analytics/roi-by-genre", h.ROIByGenre)

		// Partitions
		r.Get("/partitions", h.ListPartitions)
		r.Post("/partitions/{date}/reload", h.ReloadPartition)

		// Runs
		r.Get("/runs", h.ListRuns)
		r.Get("/runs/{date}/{runID}", h.GetRun)
	})
}
