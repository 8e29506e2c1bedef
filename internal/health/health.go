// Package health reports liveness and readiness of the API and its backing
// services.
package health

import (
	"context"
	"database/sql"
	"net/http"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/redmonkez12/go-tasks-api/internal/httputil"
	"github.com/redmonkez12/go-tasks-api/internal/logging"
)

type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// ComponentHealth represents the health of a single component
type ComponentHealth struct {
	Status   Status `json:"status"`
	Message  string `json:"message,omitempty"`
	Duration string `json:"duration,omitempty"`
}

// Report is the readiness payload.
type Report struct {
	Status     Status                     `json:"status"`
	Timestamp  string                     `json:"timestamp"`
	Components map[string]ComponentHealth `json:"components,omitempty"`
}

// Checker pings the database and, when configured, Redis.
type Checker struct {
	db      *sql.DB
	redis   *redis.Client
	timeout time.Duration
	now     func() time.Time
}

// NewChecker creates a checker. redis may be nil when the cache is disabled.
func NewChecker(db *sql.DB, redis *redis.Client, timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Checker{db: db, redis: redis, timeout: timeout, now: time.Now}
}

// CheckDB checks database connectivity
func (c *Checker) CheckDB(ctx context.Context) ComponentHealth {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.db.PingContext(ctx); err != nil {
		return ComponentHealth{Status: StatusUnhealthy, Message: "database ping failed", Duration: time.Since(start).String()}
	}

	var one int
	if err := c.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return ComponentHealth{Status: StatusDegraded, Message: "database query failed", Duration: time.Since(start).String()}
	}

	return ComponentHealth{Status: StatusHealthy, Duration: time.Since(start).String()}
}

// CheckRedis checks Redis connectivity
func (c *Checker) CheckRedis(ctx context.Context) ComponentHealth {
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	// the cache is optional, so an outage only degrades the service
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return ComponentHealth{Status: StatusDegraded, Message: "redis ping failed", Duration: time.Since(start).String()}
	}

	return ComponentHealth{Status: StatusHealthy, Duration: time.Since(start).String()}
}

// Ready runs every configured check in parallel.
func (c *Checker) Ready(ctx context.Context) *Report {
	checks := map[string]func(context.Context) ComponentHealth{
		"database": c.CheckDB,
	}
	if c.redis != nil {
		checks["redis"] = c.CheckRedis
	}

	report := &Report{
		Status:     StatusHealthy,
		Timestamp:  c.now().UTC().Format(time.RFC3339),
		Components: make(map[string]ComponentHealth, len(checks)),
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := check(ctx)
			mu.Lock()
			report.Components[name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	for _, comp := range report.Components {
		switch {
		case comp.Status == StatusUnhealthy:
			report.Status = StatusUnhealthy
		case comp.Status == StatusDegraded && report.Status == StatusHealthy:
			report.Status = StatusDegraded
		}
	}
	return report
}

// Handler provides HTTP handlers for health endpoints
type Handler struct {
	checker *Checker
}

func NewHandler(checker *Checker) *Handler {
	return &Handler{checker: checker}
}

// Live handles liveness probes
// @Summary      Liveness probe
// @Tags         health
// @Produce      json
// @Success      200 {object} httputil.Envelope
// @Router       /health [get]
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	httputil.RespondSuccess(w, "Server is running", map[string]string{
		"timestamp": h.checker.now().UTC().Format(time.RFC3339),
	}, http.StatusOK)
}

// Ready handles readiness probes
// @Summary      Readiness probe
// @Tags         health
// @Produce      json
// @Success      200 {object} httputil.Envelope{data=Report}
// @Failure      503 {object} httputil.Envelope{data=Report}
// @Router       /health/ready [get]
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	report := h.checker.Ready(r.Context())

	if report.Status == StatusUnhealthy {
		logging.GetLoggerFromContext(r.Context()).Error("readiness check failed", "components", report.Components)
		httputil.RespondJSON(w, httputil.Envelope{Success: false, Message: "Service unavailable", Data: report}, http.StatusServiceUnavailable)
		return
	}

	httputil.RespondSuccess(w, "Service ready", report, http.StatusOK)
}
