package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/showdeck/showdeck/internal/hub"
	"github.com/showdeck/showdeck/internal/logger"
	"github.com/showdeck/showdeck/internal/presentation"
)

// OptionalString distinguishes an absent JSON field from an explicit null
type OptionalString struct {
	Set   bool
	Value *string
}

// UnmarshalJSON implements json.Unmarshaler
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// UpdatePresentationRequest represents a merge patch over the presentation state
type UpdatePresentationRequest struct {
	CurrentItemID  OptionalString `json:"current_item_id"`
	CurrentSlideID OptionalString `json:"current_slide_id"`
	IsPresenting   *bool          `json:"is_presenting,omitempty"`
	IsHidden       *bool          `json:"is_hidden,omitempty"`
}

// NavigateRequest represents a navigation request
type NavigateRequest struct {
	Direction string `json:"direction" binding:"required"`
}

// PresentationHandler handles presentation state API requests
type PresentationHandler struct {
	service *presentation.Service
	hub     *hub.Hub
}

// NewPresentationHandler creates a new presentation handler instance
func NewPresentationHandler(service *presentation.Service, broadcastHub *hub.Hub) *PresentationHandler {
	return &PresentationHandler{service: service, hub: broadcastHub}
}

// Get handles GET /api/presentation
func (h *PresentationHandler) Get(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	state, err := h.service.Current(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to load presentation state")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to load presentation state",
		})
		return
	}
	c.JSON(http.StatusOK, state)
}

// Update handles PATCH /api/presentation
func (h *PresentationHandler) Update(c *gin.Context) {
	var req UpdatePresentationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	patch := presentation.Patch{
		IsPresenting: req.IsPresenting,
		IsHidden:     req.IsHidden,
	}
	var ok bool
	if patch.CurrentItemID, ok = toOptionalUUID(c, req.CurrentItemID, "current_item_id"); !ok {
		return
	}
	if patch.CurrentSlideID, ok = toOptionalUUID(c, req.CurrentSlideID, "current_slide_id"); !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	state, err := h.service.Update(ctx, patch)
	if err != nil {
		switch {
		case errors.Is(err, presentation.ErrItemNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "item_not_found",
				Message: "Referenced item does not exist",
			})
		case errors.Is(err, presentation.ErrSlideNotInItem):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error:   "slide_not_in_item",
				Message: "Slide does not belong to the current item",
			})
		default:
			logger.Log.Error().Err(err).Msg("Failed to update presentation state")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to update presentation state",
			})
		}
		return
	}

	h.hub.Broadcast(hub.MessagePresentation, state)
	c.JSON(http.StatusOK, state)
}

// Stop handles POST /api/presentation/stop
func (h *PresentationHandler) Stop(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	state, err := h.service.Stop(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to stop presentation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to stop presentation",
		})
		return
	}

	h.hub.Broadcast(hub.MessagePresentation, state)
	c.JSON(http.StatusOK, state)
}

// Hide handles POST /api/presentation/hide
func (h *PresentationHandler) Hide(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	state, err := h.service.Hide(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to hide presentation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to hide presentation",
		})
		return
	}

	h.hub.Broadcast(hub.MessagePresentation, state)
	c.JSON(http.StatusOK, state)
}

// Show handles POST /api/presentation/show
func (h *PresentationHandler) Show(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	state, err := h.service.Show(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to show presentation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to show presentation",
		})
		return
	}

	h.hub.Broadcast(hub.MessagePresentation, state)
	c.JSON(http.StatusOK, state)
}

// Navigate handles POST /api/presentation/navigate
func (h *PresentationHandler) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	state, err := h.service.Navigate(ctx, presentation.Direction(req.Direction))
	if err != nil {
		if errors.Is(err, presentation.ErrInvalidDirection) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_direction",
				Message: "Direction must be 'next' or 'prev'",
			})
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to navigate presentation")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to navigate presentation",
		})
		return
	}

	h.hub.Broadcast(hub.MessagePresentation, state)
	c.JSON(http.StatusOK, state)
}

// toOptionalUUID converts an optional string field into an optional uuid,
// responding 400 on a malformed value
func toOptionalUUID(c *gin.Context, value OptionalString, name string) (presentation.OptionalUUID, bool) {
	if !value.Set {
		return presentation.OptionalUUID{}, true
	}
	if value.Value == nil {
		return presentation.OptionalUUID{Set: true}, true
	}
	id, err := uuid.Parse(*value.Value)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid " + name + " field",
		})
		return presentation.OptionalUUID{}, false
	}
	return presentation.OptionalUUID{Set: true, Value: &id}, true
}

// SetupPresentationRoutes registers presentation routes
func SetupPresentationRoutes(apiGroup *gin.RouterGroup, service *presentation.Service, broadcastHub *hub.Hub) {
	handler := NewPresentationHandler(service, broadcastHub)

	apiGroup.GET("/presentation", handler.Get)
	apiGroup.PATCH("/presentation", handler.Update)
	apiGroup.POST("/presentation/stop", handler.Stop)
	apiGroup.POST("/presentation/hide", handler.Hide)
	apiGroup.POST("/presentation/show", handler.Show)
	apiGroup.POST("/presentation/navigate", handler.Navigate)
}
