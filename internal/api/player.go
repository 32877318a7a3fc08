package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/showdeck/showdeck/internal/logger"
	"github.com/showdeck/showdeck/internal/models"
	"github.com/showdeck/showdeck/internal/player"
)

// SeekRequest represents a seek command
type SeekRequest struct {
	Position *float64 `json:"position" binding:"required"`
}

// VolumeRequest represents a volume command
type VolumeRequest struct {
	Level *int `json:"level" binding:"required"`
}

// MuteRequest represents a mute toggle
type MuteRequest struct {
	Muted *bool `json:"muted" binding:"required"`
}

// ShuffleRequest represents a shuffle toggle
type ShuffleRequest struct {
	Shuffled *bool `json:"shuffled" binding:"required"`
}

// PlayIndexRequest represents a play-at-index command
type PlayIndexRequest struct {
	Index *int `json:"index" binding:"required"`
}

// InsertQueueRequest represents a request to append files to the queue
type InsertQueueRequest struct {
	FileIDs []string `json:"file_ids" binding:"required,min=1"`
}

// SetQueueRequest represents a request to replace the queue wholesale
type SetQueueRequest struct {
	FileIDs []string `json:"file_ids"`
}

// ReorderQueueRequest represents a request to reorder the queue
type ReorderQueueRequest struct {
	ItemIDs []string `json:"item_ids" binding:"required,min=1"`
}

// QueueResponse represents the current queue contents
type QueueResponse struct {
	Items []*models.QueueItem `json:"items"`
}

// PlayerHandler handles playback and queue API requests
type PlayerHandler struct {
	supervisor *player.Supervisor
	queue      *player.QueueService
}

// NewPlayerHandler creates a new player handler instance
func NewPlayerHandler(supervisor *player.Supervisor, queue *player.QueueService) *PlayerHandler {
	return &PlayerHandler{supervisor: supervisor, queue: queue}
}

// State handles GET /api/player
func (h *PlayerHandler) State(c *gin.Context) {
	c.JSON(http.StatusOK, h.supervisor.CurrentState())
}

// Play handles POST /api/player/play
func (h *PlayerHandler) Play(c *gin.Context) {
	h.runCommand(c, "play", h.supervisor.Play)
}

// Pause handles POST /api/player/pause
func (h *PlayerHandler) Pause(c *gin.Context) {
	h.runCommand(c, "pause", h.supervisor.Pause)
}

// Stop handles POST /api/player/stop
func (h *PlayerHandler) Stop(c *gin.Context) {
	h.runCommand(c, "stop", h.supervisor.Stop)
}

// Next handles POST /api/player/next
func (h *PlayerHandler) Next(c *gin.Context) {
	h.runCommand(c, "next", h.supervisor.Next)
}

// Previous handles POST /api/player/previous
func (h *PlayerHandler) Previous(c *gin.Context) {
	h.runCommand(c, "previous", h.supervisor.Previous)
}

// runCommand executes a bodyless player command and maps its errors
func (h *PlayerHandler) runCommand(c *gin.Context, name string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := fn(ctx); err != nil {
		respondPlayerError(c, err, name)
		return
	}
	c.JSON(http.StatusOK, h.supervisor.CurrentState())
}

// Seek handles POST /api/player/seek
func (h *PlayerHandler) Seek(c *gin.Context) {
	var req SeekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.supervisor.Seek(ctx, *req.Position); err != nil {
		respondPlayerError(c, err, "seek")
		return
	}
	c.JSON(http.StatusOK, h.supervisor.CurrentState())
}

// SetVolume handles POST /api/player/volume
func (h *PlayerHandler) SetVolume(c *gin.Context) {
	var req VolumeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.supervisor.SetVolume(ctx, *req.Level); err != nil {
		respondPlayerError(c, err, "volume")
		return
	}
	c.JSON(http.StatusOK, h.supervisor.CurrentState())
}

// SetMuted handles POST /api/player/mute
func (h *PlayerHandler) SetMuted(c *gin.Context) {
	var req MuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.supervisor.SetMuted(ctx, *req.Muted); err != nil {
		respondPlayerError(c, err, "mute")
		return
	}
	c.JSON(http.StatusOK, h.supervisor.CurrentState())
}

// SetShuffled handles POST /api/player/shuffle
func (h *PlayerHandler) SetShuffled(c *gin.Context) {
	var req ShuffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.supervisor.SetShuffled(ctx, *req.Shuffled); err != nil {
		respondPlayerError(c, err, "shuffle")
		return
	}
	c.JSON(http.StatusOK, h.supervisor.CurrentState())
}

// PlayAtIndex handles POST /api/player/play-index
func (h *PlayerHandler) PlayAtIndex(c *gin.Context) {
	var req PlayIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.supervisor.PlayAtIndex(ctx, *req.Index); err != nil {
		respondPlayerError(c, err, "play-index")
		return
	}
	c.JSON(http.StatusOK, h.supervisor.CurrentState())
}

// ListQueue handles GET /api/player/queue
func (h *PlayerHandler) ListQueue(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.queue.List(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list queue")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list queue",
		})
		return
	}
	c.JSON(http.StatusOK, QueueResponse{Items: items})
}

// InsertQueue handles POST /api/player/queue
func (h *PlayerHandler) InsertQueue(c *gin.Context) {
	var req InsertQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ids, ok := parseUUIDList(c, req.FileIDs, "file_ids")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.queue.InsertMany(ctx, ids)
	if err != nil {
		respondQueueError(c, err, "Failed to insert queue items")
		return
	}
	c.JSON(http.StatusCreated, QueueResponse{Items: items})
}

// SetQueue handles PUT /api/player/queue
func (h *PlayerHandler) SetQueue(c *gin.Context) {
	var req SetQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ids, ok := parseUUIDList(c, req.FileIDs, "file_ids")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	items, err := h.queue.SetAll(ctx, ids)
	if err != nil {
		respondQueueError(c, err, "Failed to replace queue")
		return
	}
	c.JSON(http.StatusOK, QueueResponse{Items: items})
}

// ReorderQueue handles PUT /api/player/queue/order
func (h *PlayerHandler) ReorderQueue(c *gin.Context) {
	var req ReorderQueueRequest
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

	if err := h.queue.Reorder(ctx, ids); err != nil {
		if player.IsReorderMismatch(err) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "reorder_mismatch",
				Message: "Reorder id set does not match current queue membership",
			})
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to reorder queue")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to reorder queue",
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// RemoveQueueItem handles DELETE /api/player/queue/:id
func (h *PlayerHandler) RemoveQueueItem(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.queue.Remove(ctx, id); err != nil {
		if errors.Is(err, player.ErrQueueItemNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "queue_item_not_found",
				Message: "Queue item does not exist",
			})
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to remove queue item")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to remove queue item",
		})
		return
	}
	c.Status(http.StatusNoContent)
}

// respondPlayerError maps supervisor errors to HTTP responses
func respondPlayerError(c *gin.Context, err error, command string) {
	switch {
	case player.IsUnavailable(err):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "player_unavailable",
			Message: "Media player is not available",
		})
	case errors.Is(err, player.ErrQueueIndexOutOfRange):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "index_out_of_range",
			Message: "Queue index is out of range",
		})
	case errors.Is(err, player.ErrInvalidVolume):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_volume",
			Message: "Volume must be between 0 and 100",
		})
	default:
		logger.Log.Error().Err(err).Str("command", command).Msg("Player command failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Player command failed",
		})
	}
}

// respondQueueError maps queue service errors to HTTP responses
func respondQueueError(c *gin.Context, err error, fallback string) {
	if errors.Is(err, player.ErrFileNotFound) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "file_not_found",
			Message: "One or more referenced media files do not exist",
		})
		return
	}
	logger.Log.Error().Err(err).Msg(fallback)
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: fallback,
	})
}

// SetupPlayerRoutes registers playback and queue routes
func SetupPlayerRoutes(apiGroup *gin.RouterGroup, supervisor *player.Supervisor, queue *player.QueueService) {
	handler := NewPlayerHandler(supervisor, queue)

	apiGroup.GET("/player", handler.State)
	apiGroup.POST("/player/play", handler.Play)
	apiGroup.POST("/player/pause", handler.Pause)
	apiGroup.POST("/player/stop", handler.Stop)
	apiGroup.POST("/player/seek", handler.Seek)
	apiGroup.POST("/player/volume", handler.SetVolume)
	apiGroup.POST("/player/mute", handler.SetMuted)
	apiGroup.POST("/player/shuffle", handler.SetShuffled)
	apiGroup.POST("/player/next", handler.Next)
	apiGroup.POST("/player/previous", handler.Previous)
	apiGroup.POST("/player/play-index", handler.PlayAtIndex)

	apiGroup.GET("/player/queue", handler.ListQueue)
	apiGroup.POST("/player/queue", handler.InsertQueue)
	apiGroup.PUT("/player/queue", handler.SetQueue)
	apiGroup.PUT("/player/queue/order", handler.ReorderQueue)
	apiGroup.DELETE("/player/queue/:id", handler.RemoveQueueItem)
}
