package models

import (
	"time"

	"github.com/google/uuid"
)

// QueueItem represents a now-playing queue entry driving audio playback
type QueueItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	FileID    uuid.UUID `json:"file_id" gorm:"type:text;not null;column:file_id" validate:"required"`
	SortOrder int       `json:"sort_order" gorm:"type:integer;not null;column:sort_order" validate:"gte=0"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`

	// Populated by joins, not stored in database
	File *MediaFile `json:"file,omitempty" gorm:"-"`
}

// NewQueueItem creates a new QueueItem with generated UUID and timestamp
func NewQueueItem(fileID uuid.UUID, sortOrder int) *QueueItem {
	return &QueueItem{
		ID:        uuid.New(),
		FileID:    fileID,
		SortOrder: sortOrder,
		CreatedAt: time.Now().UTC(),
	}
}
