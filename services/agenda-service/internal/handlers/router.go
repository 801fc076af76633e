package handlers

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/md-rashed-zaman/apptdesk/libs/httpx"
	"github.com/md-rashed-zaman/apptdesk/libs/runtime"
)

type RouterConfig struct {
	Logger  *slog.Logger
	Agenda  *AgendaHandler
	Metrics http.Handler
	Ready   []runtime.ReadyCheck
	// APIMiddleware wraps only /api routes (rate limiting). Nil entries are skipped.
	APIMiddleware []httpx.Middleware
	CORS          httpx.CORSPolicy
}

// NewRouter wires probes, metrics and the agenda API behind request id, CORS and access log
// middleware.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	runtime.MountProbes(r, cfg.Ready...)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}
	r.Route("/api/v1/agenda", func(api chi.Router) {
		for _, mw := range cfg.APIMiddleware {
			if mw != nil {
				api.Use(mw)
			}
		}
		cfg.Agenda.Routes(api)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	cors := cfg.CORS
	cors.ExposedHeaders = append(cors.ExposedHeaders, SessionHeader, "X-Request-Id")
	cors.AllowedHeaders = append(cors.AllowedHeaders, "Content-Type", SessionHeader)
	return httpx.Chain(r,
		httpx.WithRequestID,
		httpx.WithCORS(cors),
		httpx.WithAccessLog(cfg.Logger),
	)
}
