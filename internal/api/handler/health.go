package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
)

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the health check endpoint.
type HealthHandler struct {
	db Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Check pings PostgreSQL and reports service health. A failed ping
// returns 503 so load balancers stop routing to this instance.
func (h *HealthHandler) Check(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		logger.Errorw("健康检查失败", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"reason": "database unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
