package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/taskstream/taskstream/internal/infrastructure/http/handlers"
	"github.com/taskstream/taskstream/internal/infrastructure/http/middleware"
)

// RouterConfig wires the handlers a service actually serves; nil handlers
// leave their routes unmounted so each binary mounts only its own surface.
type RouterConfig struct {
	AuthHandler    *handlers.AuthHandler
	ProjectHandler *handlers.ProjectHandler
	TaskHandler    *handlers.TaskHandler
	HealthHandler  *handlers.HealthHandler
	Realtime       http.Handler // websocket endpoint, mounted at /ws
	RequireJWT     func(http.Handler) http.Handler
	Log            zerolog.Logger
	Secure         func(http.Handler) http.Handler
	IPRateLimit    func(http.Handler) http.Handler
	Metrics        bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	// The websocket handshake authenticates itself; it must not sit behind
	// the JSON content-type or bearer middleware.
	if cfg.Realtime != nil {
		r.Handle("/ws", cfg.Realtime)
	}

	r.Group(func(r chi.Router) {
		r.Use(chimid.AllowContentType("application/json"))
		r.Use(chimid.SetHeader("Content-Type", "application/json"))

		if cfg.AuthHandler != nil {
			r.Route("/auth", func(r chi.Router) {
				r.Post("/register", cfg.AuthHandler.Register)
				r.Post("/login", cfg.AuthHandler.Login)
			})
		}

		if cfg.ProjectHandler != nil && cfg.RequireJWT != nil {
			r.Route("/projects", func(r chi.Router) {
				r.Use(cfg.RequireJWT)
				r.Post("/", cfg.ProjectHandler.Create)
				r.Get("/", cfg.ProjectHandler.List)
				r.Get("/{id}", cfg.ProjectHandler.Get)
				r.Put("/{id}", cfg.ProjectHandler.Update)
				r.Post("/{id}/assign", cfg.ProjectHandler.Assign)
			})
		}

		if cfg.TaskHandler != nil && cfg.RequireJWT != nil {
			r.Group(func(r chi.Router) {
				r.Use(cfg.RequireJWT)
				r.Get("/projects/{id}/tasks", cfg.TaskHandler.ListByProject)
			})
			r.Route("/tasks", func(r chi.Router) {
				r.Use(cfg.RequireJWT)
				r.Post("/", cfg.TaskHandler.Create)
				r.Get("/assigned", cfg.TaskHandler.ListAssigned)
				r.Get("/{id}", cfg.TaskHandler.Get)
				r.Patch("/{id}", cfg.TaskHandler.Update)
				r.Delete("/{id}", cfg.TaskHandler.Delete)
			})
		}
	})

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
