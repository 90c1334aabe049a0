package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/gray-logic-irclimate/internal/auth"
	"github.com/nerrad567/gray-logic-irclimate/internal/bridges/ir"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/metrics", s.handleMetrics)

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Get("/stats", s.handleDeviceStats)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Get("/state", s.handleGetDeviceState)
				r.With(s.requireScope(auth.ScopeControl)).Put("/state", s.handleSetDeviceState)
				r.Get("/history", s.handleGetDeviceHistory)
			})
		})

		r.With(s.requireScope(auth.ScopeRead)).Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status, including the bridge's
// view when one is running.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"status":  ir.HealthHealthy,
		"version": s.version,
	}
	if s.bridge != nil {
		h := s.bridge.Health()
		resp["bridge"] = h
		if h.Status != ir.HealthHealthy {
			resp["status"] = ir.HealthDegraded
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
