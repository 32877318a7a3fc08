package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemType distinguishes schedule entries that reference library content
// from ad hoc standalone slides.
type ItemType string

// Schedule item type constants
const (
	ItemTypeContent ItemType = "content" // references an external content entity
	ItemTypeSlide   ItemType = "slide"   // standalone slide authored in place
)

// IsValid checks if the item type is a known valid value
func (t ItemType) IsValid() bool {
	return t == ItemTypeContent || t == ItemTypeSlide
}

// ScheduleItem represents one entry in the ordered presentation schedule
type ScheduleItem struct {
	ID        uuid.UUID  `json:"id" gorm:"type:text;primaryKey;column:id"`
	Type      ItemType   `json:"type" gorm:"type:text;not null;column:type" validate:"required"`
	Title     string     `json:"title" gorm:"type:text;not null;column:title" validate:"required,min=1,max=255"`
	ContentID *uuid.UUID `json:"content_id,omitempty" gorm:"type:text;column:content_id"`
	Position  int        `json:"position" gorm:"type:integer;not null;column:position" validate:"gte=0"`
	Expanded  bool       `json:"expanded" gorm:"type:integer;not null;default:0;column:expanded"`
	CreatedAt time.Time  `json:"created_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:created_at"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`

	// Populated by preloads, ordered by slide position
	Slides []*Slide `json:"slides,omitempty" gorm:"foreignKey:ItemID"`
}

// NewScheduleItem creates a new ScheduleItem with generated UUID and timestamps
func NewScheduleItem(itemType ItemType, title string, contentID *uuid.UUID, position int) *ScheduleItem {
	now := time.Now().UTC()
	return &ScheduleItem{
		ID:        uuid.New(),
		Type:      itemType,
		Title:     title,
		ContentID: contentID,
		Position:  position,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
