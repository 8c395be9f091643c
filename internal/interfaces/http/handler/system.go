package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/orderlink/backend/internal/infrastructure/persistence"
	"github.com/orderlink/backend/internal/infrastructure/scheduler"
)

// SystemHandler exposes health and runtime status
type SystemHandler struct {
	BaseHandler
	db    *persistence.Database
	sched *scheduler.DeferredScheduler
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(db *persistence.Database, sched *scheduler.DeferredScheduler) *SystemHandler {
	return &SystemHandler{
		db:    db,
		sched: sched,
	}
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// Health reports liveness, database reachability and pending job count
func (h *SystemHandler) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if err := h.db.Ping(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":       status,
		"pending_jobs": h.sched.PendingCount(),
	})
}
