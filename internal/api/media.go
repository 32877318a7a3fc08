package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/showdeck/showdeck/internal/db"
	"github.com/showdeck/showdeck/internal/logger"
	"github.com/showdeck/showdeck/internal/models"
)

// RegisterMediaRequest represents a request to register a media file
type RegisterMediaRequest struct {
	FilePath string  `json:"file_path" binding:"required"`
	Title    string  `json:"title" binding:"required"`
	Duration float64 `json:"duration"`
}

// MediaListResponse represents the registered media files
type MediaListResponse struct {
	Files []*models.MediaFile `json:"files"`
}

// MediaHandler handles media file registry requests
type MediaHandler struct {
	files *db.MediaFileRepository
}

// NewMediaHandler creates a new media handler instance
func NewMediaHandler(files *db.MediaFileRepository) *MediaHandler {
	return &MediaHandler{files: files}
}

// List handles GET /api/media
func (h *MediaHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	files, err := h.files.List(ctx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list media files")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to list media files",
		})
		return
	}
	c.JSON(http.StatusOK, MediaListResponse{Files: files})
}

// Register handles POST /api/media
func (h *MediaHandler) Register(c *gin.Context) {
	var req RegisterMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body: " + err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	file := models.NewMediaFile(req.FilePath, req.Title, req.Duration)
	if err := h.files.Create(ctx, file); err != nil {
		if db.IsDuplicate(err) {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "duplicate_file",
				Message: "A media file with this path is already registered",
			})
			return
		}
		logger.Log.Error().Err(err).Msg("Failed to register media file")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to register media file",
		})
		return
	}
	c.JSON(http.StatusCreated, file)
}

// Delete handles DELETE /api/media/:id
func (h *MediaHandler) Delete(c *gin.Context) {
	id, ok := parsePathUUID(c, "id")
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.files.Delete(ctx, id); err != nil {
		switch {
		case db.IsNotFound(err):
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "file_not_found",
				Message: "Media file does not exist",
			})
		case db.IsForeignKey(err):
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "file_in_use",
				Message: "Media file is referenced by the queue",
			})
		default:
			logger.Log.Error().Err(err).Msg("Failed to delete media file")
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "internal_error",
				Message: "Failed to delete media file",
			})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

// SetupMediaRoutes registers media registry routes
func SetupMediaRoutes(apiGroup *gin.RouterGroup, files *db.MediaFileRepository) {
	handler := NewMediaHandler(files)

	apiGroup.GET("/media", handler.List)
	apiGroup.POST("/media", handler.Register)
	apiGroup.DELETE("/media/:id", handler.Delete)
}
