package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"animax/internal/logging"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	ping  func(context.Context) error
	stats func() sql.DBStats
}

func NewHealthHandler(ping func(context.Context) error, stats func() sql.DBStats) *HealthHandler {
	return &HealthHandler{ping: ping, stats: stats}
}

// Health reports database reachability and connection pool usage.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status, code := "healthy", http.StatusOK
	if err := h.ping(ctx); err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("health check failed")
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	stats := h.stats()
	c.JSON(code, gin.H{
		"success":  code == http.StatusOK,
		"status":   status,
		"database": code == http.StatusOK,
		"app":      "animax",
		"database_stats": gin.H{
			"open_connections": stats.OpenConnections,
			"in_use":           stats.InUse,
			"idle":             stats.Idle,
			"max_open":         stats.MaxOpenConnections,
		},
	})
}
