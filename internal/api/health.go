package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/showdeck/showdeck/internal/db"
)

// HealthStatus is the liveness payload. Database holds "healthy" or
// "unhealthy"; Error carries the probe failure when degraded.
type HealthStatus struct {
	Status   string    `json:"status"`
	Database string    `json:"database"`
	Error    string    `json:"error,omitempty"`
	Time     time.Time `json:"time"`
}

// HealthHandler answers liveness probes
type HealthHandler struct {
	db *db.DB
}

// NewHealthHandler creates a new health check handler
func NewHealthHandler(database *db.DB) *HealthHandler {
	return &HealthHandler{db: database}
}

// Check pings the database and reports ok or degraded
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:   "ok",
		Database: "healthy",
		Time:     time.Now().UTC(),
	}

	if err := h.db.Health(ctx); err != nil {
		status.Status = "degraded"
		status.Database = "unhealthy"
		status.Error = err.Error()
		c.JSON(http.StatusServiceUnavailable, status)
		return
	}

	c.JSON(http.StatusOK, status)
}

// SetupHealthRoutes registers health check routes
func SetupHealthRoutes(apiGroup *gin.RouterGroup, database *db.DB) {
	handler := NewHealthHandler(database)
	apiGroup.GET("/health", handler.Check)
}
