package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
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

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		// Device endpoints
		r.Route("/devices", func(r chi.Router) {
			r.Get("/", s.handleListDevices)
			r.Post("/scan", s.handleScanDevices)

			r.Route("/{port}", func(r chi.Router) {
				r.Get("/", s.handleGetDevice)
				r.Get("/zones", s.handleGetZones)
				r.Get("/layout", s.handleGetLayout)
				r.Get("/preview.png", s.handleGetPreview)

				r.Put("/effect", s.handleSetScopeEffect)
				r.Put("/effect-params", s.handleSetScopeEffectParams)
				r.Put("/brightness", s.handleSetScopeBrightness)
				r.Put("/outputs/{outputID}/segments", s.handleSetOutputSegments)
			})
		})

		// Scope tree and normalization
		r.Get("/tree", s.handleGetTree)
		r.Post("/scope/normalize", s.handleNormalizeScope)

		// WebSocket (frames + device updates)
		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
