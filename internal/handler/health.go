package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

const healthCheckTimeout = 2 * time.Second

type healthResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message"`
	Checks  map[string]string `json:"checks"`
}

type healthCheck struct {
	name string
	ping func(ctx context.Context) error
}

// AddHealthCheck registers an extra dependency for GET /api/health, such as
// the Redis contact ledger. The database is always checked.
func (h *Handler) AddHealthCheck(name string, ping func(ctx context.Context) error) {
	h.checks = append(h.checks, healthCheck{name: name, ping: ping})
}

// Health reports "up" or "down" per dependency and 503 when any is down.
// Driver errors are logged, never returned.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	checks := append([]healthCheck{{name: "database", ping: h.db.Ping}}, h.checks...)
	resp := healthResponse{Status: "ok", Message: "Order Desk API", Checks: make(map[string]string, len(checks))}
	status := http.StatusOK

	for _, c := range checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := c.ping(ctx)
		cancel()
		if err != nil {
			slog.WarnContext(r.Context(), "health check failed", "check", c.name, "error", err)
			resp.Checks[c.name] = "down"
			resp.Status = "unhealthy"
			resp.Message = c.name + " unreachable"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[c.name] = "up"
	}
	writeJSON(w, status, resp)
}
