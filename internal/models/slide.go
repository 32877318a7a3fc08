package models

import (
	"time"

	"github.com/google/uuid"
)

// Slide represents a single projectable slide belonging to a schedule item
type Slide struct {
	ID        uuid.UUID `json:"id" gorm:"type:text;primaryKey;column:id"`
	ItemID    uuid.UUID `json:"item_id" gorm:"type:text;not null;column:item_id" validate:"required"`
	Position  int       `json:"position" gorm:"type:integer;not null;column:position" validate:"gte=0"`
	Body      string    `json:"body" gorm:"type:text;not null;column:body"`
	CreatedAt time.Time `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
}

// NewSlide creates a new Slide with generated UUID and timestamp
func NewSlide(itemID uuid.UUID, position int, body string) *Slide {
	return &Slide{
		ID:        uuid.New(),
		ItemID:    itemID,
		Position:  position,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}
