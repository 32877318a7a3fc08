package models

import (
	"time"

	"github.com/google/uuid"
)

// PresentationStateRowID is the primary key of the single persisted state row.
const PresentationStateRowID = 1

// PresentationState is the process-wide "now showing" state pushed to every
// connected display. IsHidden is only meaningful while IsPresenting is true;
// LastSlideID holds the slide to resume after a hide.
type PresentationState struct {
	ID             int        `json:"-" gorm:"type:integer;primaryKey;column:id"`
	CurrentItemID  *uuid.UUID `json:"current_item_id" gorm:"type:text;column:current_item_id"`
	CurrentSlideID *uuid.UUID `json:"current_slide_id" gorm:"type:text;column:current_slide_id"`
	LastSlideID    *uuid.UUID `json:"last_slide_id" gorm:"type:text;column:last_slide_id"`
	IsPresenting   bool       `json:"is_presenting" gorm:"type:integer;not null;default:0;column:is_presenting"`
	IsHidden       bool       `json:"is_hidden" gorm:"type:integer;not null;default:0;column:is_hidden"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"type:datetime;default:CURRENT_TIMESTAMP;column:updated_at"`
}

// TableName overrides the GORM table name
func (PresentationState) TableName() string {
	return "presentation_state"
}

// Clone returns a copy of the state so transition functions never mutate
// the caller's value in place.
func (s PresentationState) Clone() PresentationState {
	out := s
	out.CurrentItemID = cloneUUID(s.CurrentItemID)
	out.CurrentSlideID = cloneUUID(s.CurrentSlideID)
	out.LastSlideID = cloneUUID(s.LastSlideID)
	return out
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
