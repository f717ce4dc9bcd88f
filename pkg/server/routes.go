package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"a11y-hq/lumen/pkg/telemetry/health"
	"a11y-hq/lumen/pkg/telemetry/tracing"
)

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	// Outermost first.
	r.Use(s.recoveryMiddleware)
	r.Use(requestIDMiddleware)
	r.Use(chimiddleware.RealIP)
	r.Use(tracing.HTTPMiddleware(s.deps.Tracer, routeName))
	r.Use(s.loggingMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	r.Get("/health", s.deps.Health.LivenessHandler())
	r.Get("/ready", s.deps.Health.ReadinessHandler())
	r.Get("/version", health.VersionHandler(s.deps.Version))
	if s.deps.Metrics != nil && s.deps.MetricsPath != "" {
		r.Handle(s.deps.MetricsPath, s.deps.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		if s.keyring != nil {
			r.Use(s.authMiddleware(s.keyring))
		}

		r.Route("/rules", func(r chi.Router) {
			r.Get("/", s.handleListRules)
			r.Get("/status", s.handleRulesStatus)
			r.Post("/reload", s.handleReloadRules)
			r.Get("/{ruleID}", s.handleGetRule)
		})

		r.Route("/scans", func(r chi.Router) {
			r.Get("/", s.handleListScans)
			create := r.With(maxBodyMiddleware(s.config.MaxBodyBytes))
			if s.scanBucket != nil {
				create = create.With(s.rateLimitMiddleware(s.scanBucket))
			}
			create.Post("/", s.handleCreateScan)
			r.Get("/{scanID}", s.handleGetScan)
			r.Delete("/{scanID}", s.handleDeleteScan)
		})
	})

	return r
}

// routeName names request spans after the matched chi pattern.
func routeName(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.RoutePattern() == "" {
		return ""
	}
	return r.Method + " " + rctx.RoutePattern()
}
