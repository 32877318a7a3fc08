package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/showdeck/showdeck/internal/logger"
	"github.com/showdeck/showdeck/internal/models"
	"github.com/showdeck/showdeck/internal/player"
	"github.com/showdeck/showdeck/internal/presentation"
)

// StateResponse bundles the live state a client needs to render from scratch.
// Clients poll this once on load, then follow websocket pushes.
type StateResponse struct {
	Presentation models.PresentationState `json:"presentation"`
	Player       player.State             `json:"player"`
}

// StateHandler handles the combined state snapshot endpoint
type StateHandler struct {
	presentation *presentation.Service
	supervisor   *player.Supervisor
}

// NewStateHandler creates a new state handler instance
func NewStateHandler(presentationSvc *presentation.Service, supervisor *player.Supervisor) *StateHandler {
	return &StateHandler{presentation: presentationSvc, supervisor: supervisor}
}

// Get handles GET /api/state
func (h *StateHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	presentationState, err := h.presentation.Current(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to load presentation state")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load state snapshot",
		})
		return
	}

	c.JSON(http.StatusOK, StateResponse{
		Presentation: presentationState,
		Player:       h.supervisor.CurrentState(),
	})
}

// SetupStateRoutes registers the state snapshot route
func SetupStateRoutes(apiGroup *gin.RouterGroup, presentationSvc *presentation.Service, supervisor *player.Supervisor) {
	handler := NewStateHandler(presentationSvc, supervisor)
	apiGroup.GET("/state", handler.Get)
}
