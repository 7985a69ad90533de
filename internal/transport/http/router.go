package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authmw "conduit/pkg/platform/middleware/auth"
	"conduit/pkg/platform/middleware/request"
)

// NewRouter wires all public endpoints with middleware.
func NewRouter(h *Handler, validator authmw.TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(request.Logger(logger))
	r.Use(request.Timeout(60 * time.Second))
	r.Use(request.ContentTypeJSON)

	r.Get("/health", handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Invocation API: every route requires a service token bound to a tenant.
	r.Route("/v1", func(r chi.Router) {
		r.Use(authmw.RequireServiceToken(validator, logger))
		r.Get("/apis", h.handleListAPIs)
		r.Post("/apis/{apiID}/operations/{operationID}/execute", h.handleExecute)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
