package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// HealthHandler serves /health. Postgres is required; redis is checked only
// when the service runs with a queue attached, so a nil client skips it.
type HealthHandler struct {
	service string
	pool    *pgxpool.Pool
	redis   *redis.Client
}

func NewHealthHandler(service string, pool *pgxpool.Pool, redisClient *redis.Client) *HealthHandler {
	return &HealthHandler{service: service, pool: pool, redis: redisClient}
}

type healthResponse struct {
	Service string            `json:"service"`
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string)
	healthy := true

	if err := h.pool.Ping(ctx); err != nil {
		checks["postgres"] = "down: " + err.Error()
		healthy = false
	} else {
		checks["postgres"] = "up"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down: " + err.Error()
			healthy = false
		} else {
			checks["redis"] = "up"
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}
	writeJSON(w, code, healthResponse{Service: h.service, Status: status, Checks: checks})
}
