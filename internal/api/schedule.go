package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/showdeck/showdeck/internal/logger"
	"github.com/showdeck/showdeck/internal/models"
	"github.com/showdeck/showdeck/internal/schedule"
)

// Request/Response DTOs

// InsertItemRequest represents a request to insert a schedule item
type InsertItemRequest struct {
	Type      string   `json:"type" binding:"required"`
	Title     string   `json:"title" binding:"required"`
	ContentID *string  `json:"content_id,omitempty"`
	AfterID   *string  `json:"after_id,omitempty"`
	Slides    []string `json:"slides,omitempty"`
}

// UpdateItemRequest represents a partial update to a schedule item
type UpdateItemRequest struct {
	Title     *string `json:"title,omitempty"`
	ContentID *string `json:"content_id,omitempty"`
}

// SetExpandedRequest represents a request to toggle the expansion flag
type SetExpandedRequest struct {
	Expanded *bool `json:"expanded" binding:"required"`
}

// ReorderScheduleRequest represents a request to reorder the schedule
type ReorderScheduleRequest struct {
	ItemIDs []string `json:"item_ids" binding:"required,min=1"`
}

// AddSlideRequest represents a request to append a slide to an item
type AddSlideRequest struct {
	Body string `json:"body"`
}

// ScheduleResponse represents the full ordered schedule
type ScheduleResponse struct {
	Items []*models.ScheduleItem `json:"items"`
}

// ScheduleHandler handles schedule-related API requests
type ScheduleHandler struct {
	service *schedule.Service
}

// NewScheduleHandler creates a new schedule handler instance
func NewScheduleHandler(service *schedule.Service) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// List handles GET /api/schedule
func (h *ScheduleHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.service.List(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list schedule")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list schedule",
		})
		return
	}
	c.JSON(http.StatusOK, ScheduleResponse{Items: items})
}

// Insert handles POST /api/schedule/items
func (h *ScheduleHandler) Insert(c *gin.Context) {
	var req InsertItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	anchorID, ok := parseOptionalUUID(c, req.AfterID, "after_id")
	if !ok {
		return
	}
	contentID, ok := parseOptionalUUID(c, req.ContentID, "content_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.InsertAfter(ctx, anchorID, schedule.NewItemInput{
		Type:      models.ItemType(req.Type),
		Title:     req.Title,
		ContentID: contentID,
		Slides:    req.Slides,
	})
	if err != nil {
		switch {
		case errors.Is(err, schedule.ErrInvalidItemType), errors.Is(err, schedule.ErrEmptyTitle):
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_request",
				Message: err.Error(),
			})
		case errors.Is(err, schedule.ErrAnchorNotFound):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "anchor_not_found",
				Message: "Anchor item does not exist",
			})
		default:
			logger.Log.Error().Err(err).Msg("Failed to insert schedule item")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to insert schedule item",
			})
		}
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Update handles PATCH /api/schedule/items/:id
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	contentID, ok := parseOptionalUUID(c, req.ContentID, "content_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.service.Update(ctx, id, schedule.ItemPatch{
		Title:     req.Title,
		ContentID: contentID,
	})
	if err != nil {
		respondScheduleError(c, err, "Failed to update schedule item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// SetExpanded handles PUT /api/schedule/items/:id/expanded
func (h *ScheduleHandler) SetExpanded(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	var req SetExpandedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.SetExpanded(ctx, id, *req.Expanded); err != nil {
		respondScheduleError(c, err, "Failed to set expanded flag")
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /api/schedule/items/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Delete(ctx, id); err != nil {
		respondScheduleError(c, err, "Failed to delete schedule item")
		return
	}
	c.Status(http.StatusNoContent)
}

// Reorder handles PUT /api/schedule/order
func (h *ScheduleHandler) Reorder(c *gin.Context) {
	var req ReorderScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ids, ok := parseUUIDList(c, req.ItemIDs, "item_ids")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.Reorder(ctx, ids); err != nil {
		if schedule.IsReorderMismatch(err) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "reorder_mismatch",
				Message: "Reorder id set does not match current schedule membership",
			})
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to reorder schedule")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to reorder schedule",
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// AddSlide handles POST /api/schedule/items/:id/slides
func (h *ScheduleHandler) AddSlide(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	var req AddSlideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	slide, err := h.service.AddSlide(ctx, id, req.Body)
	if err != nil {
		respondScheduleError(c, err, "Failed to add slide")
		return
	}
	c.JSON(http.StatusCreated, slide)
}

// RemoveSlide handles DELETE /api/schedule/slides/:id
func (h *ScheduleHandler) RemoveSlide(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.service.RemoveSlide(ctx, id); err != nil {
		if errors.Is(err, schedule.ErrSlideNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "slide_not_found",
				Message: "Slide does not exist",
			})
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to remove slide")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to remove slide",
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// respondScheduleError maps schedule service errors to HTTP responses
func respondScheduleError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, schedule.ErrItemNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "item_not_found",
			Message: "Schedule item does not exist",
		})
	case errors.Is(err, schedule.ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: err.Error(),
		})
	default:
		logger.Log.Error().Err(err).Msg(fallback)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: fallback,
		})
	}
}

// parsePathUUID parses a UUID path parameter, responding 400 on failure
func parsePathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid " + name + " parameter",
		})
		return uuid.Nil, false
	}
	return id, true
}

// parseOptionalUUID parses an optional UUID body field, responding 400 on failure
func parseOptionalUUID(c *gin.Context, value *string, name string) (*uuid.UUID, bool) {
	if value == nil {
		return nil, true
	}
	id, err := uuid.Parse(*value)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_id",
			Message: "Invalid " + name + " field",
		})
		return nil, false
	}
	return &id, true
}

// parseUUIDList parses a list of UUID strings, responding 400 on failure
func parseUUIDList(c *gin.Context, values []string, name string) ([]uuid.UUID, bool) {
	ids := make([]uuid.UUID, len(values))
	for i, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_id",
				Message: "Invalid uuid in " + name,
			})
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}

// SetupScheduleRoutes registers schedule routes
func SetupScheduleRoutes(apiGroup *gin.RouterGroup, service *schedule.Service) {
	handler := NewScheduleHandler(service)

	apiGroup.GET("/schedule", handler.List)
	apiGroup.POST("/schedule/items", handler.Insert)
	apiGroup.PATCH("/schedule/items/:id", handler.Update)
	apiGroup.DELETE("/schedule/items/:id", handler.Delete)
	apiGroup.PUT("/schedule/items/:id/expanded", handler.SetExpanded)
	apiGroup.PUT("/schedule/order", handler.Reorder)
	apiGroup.POST("/schedule/items/:id/slides", handler.AddSlide)
	apiGroup.DELETE("/schedule/slides/:id", handler.RemoveSlide)
}
