package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"mealmart/internal/caching"
	"mealmart/internal/realtime"
)

// HealthHandlers serves liveness and readiness checks.
type HealthHandlers struct {
	db    *pgxpool.Pool
	cache caching.CacheService
	hub   *realtime.Hub
}

func NewHealthHandlers(db *pgxpool.Pool, cache caching.CacheService, hub *realtime.Hub) *HealthHandlers {
	return &HealthHandlers{db: db, cache: cache, hub: hub}
}

// HealthStatus is the health report payload.
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// HealthCheck handles GET /health. Dependency failures degrade the status
// rather than failing the check outright.
func (h *HealthHandlers) HealthCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	health := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string),
	}

	if err := h.db.Ping(ctx); err != nil {
		health.Services["database"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["database"] = "healthy"
	}

	if err := h.cache.Ping(ctx); err != nil {
		health.Services["redis"] = "unhealthy"
		health.Status = "degraded"
	} else {
		health.Services["redis"] = "healthy"
	}

	statusCode := http.StatusOK
	if health.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	return c.JSON(statusCode, health)
}

// Ready handles GET /ready, a cheap liveness check.
func (h *HealthHandlers) Ready(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":        "ok",
		"adminSessions": h.hub.RoomSize(realtime.RoomAdminOrders),
	})
}
