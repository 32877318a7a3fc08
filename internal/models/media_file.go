package models

import (
	"time"

	"github.com/google/uuid"
)

// MediaFile represents a playable audio file known to the system
type MediaFile struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	FilePath  string    `json:"file_path" gorm:"type:text;not null;column:file_path" validate:"required"`
	Title     string    `json:"title" gorm:"type:text;not null;column:title" validate:"required"`
	Duration  float64   `json:"duration" gorm:"type:real;not null;default:0;column:duration"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewMediaFile creates a new MediaFile with generated UUID and timestamp
func NewMediaFile(filePath, title string, duration float64) *MediaFile {
	return &MediaFile{
		ID:        uuid.New(),
		FilePath:  filePath,
		Title:     title,
		Duration:  duration,
		CreatedAt: time.Now().UTC(),
	}
}
