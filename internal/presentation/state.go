// Package presentation implements the "now showing" state machine.
//
// The logical states (idle, presenting-visible, presenting-hidden) are
// derived from IsPresenting and IsHidden rather than stored as a tag. Every
// transition here is a pure function over a state value so each is
// independently unit-testable; persistence and broadcast happen in Service.
package presentation

import (
	"time"

	"github.com/google/uuid"
	"github.com/showdeck/showdeck/internal/models"
)

// Direction selects which way Navigate walks the slide sequence
type Direction string

// Navigation direction constants
const (
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

// IsValid checks if the direction is a known valid value
func (d Direction) IsValid() bool {
	return d == DirectionNext || d == DirectionPrev
}

// OptionalUUID distinguishes "field absent" from "field set to null" in a
// merge patch.
type OptionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

// Patch describes a merge-patch over the mutable presentation state fields
type Patch struct {
	CurrentItemID  OptionalUUID
	CurrentSlideID OptionalUUID
	IsPresenting   *bool
	IsHidden       *bool
}

// ApplyPatch merges the patch into the state and stamps UpdatedAt
func ApplyPatch(state models.PresentationState, patch Patch, now time.Time) models.PresentationState {
	next := state.Clone()
	if patch.CurrentItemID.Set {
		next.CurrentItemID = patch.CurrentItemID.Value
	}
	if patch.CurrentSlideID.Set {
		next.CurrentSlideID = patch.CurrentSlideID.Value
	}
	if patch.IsPresenting != nil {
		next.IsPresenting = *patch.IsPresenting
	}
	if patch.IsHidden != nil {
		next.IsHidden = *patch.IsHidden
	}
	next.UpdatedAt = now
	return next
}

// Stop ends the presentation session: current item, current slide and the
// presenting flag are cleared. LastSlideID is left untouched.
func Stop(state models.PresentationState, now time.Time) models.PresentationState {
	next := state.Clone()
	next.CurrentItemID = nil
	next.CurrentSlideID = nil
	next.IsPresenting = false
	next.UpdatedAt = now
	return next
}

// Hide blanks the output while keeping the session resumable: the current
// slide moves into LastSlideID and the current item is preserved.
func Hide(state models.PresentationState, now time.Time) models.PresentationState {
	next := state.Clone()
	next.IsHidden = true
	next.LastSlideID = next.CurrentSlideID
	next.CurrentSlideID = nil
	next.UpdatedAt = now
	return next
}

// Show unblanks the output, restoring the slide saved by Hide
func Show(state models.PresentationState, now time.Time) models.PresentationState {
	next := state.Clone()
	next.IsHidden = false
	next.CurrentSlideID = next.LastSlideID
	next.UpdatedAt = now
	return next
}

// slideRef is one (item, slide) pair in document order
type slideRef struct {
	itemID  uuid.UUID
	slideID uuid.UUID
}

// flatten lists every (item, slide) pair in document order. Items with zero
// slides are transparent.
func flatten(items []*models.ScheduleItem) []slideRef {
	var refs []slideRef
	for _, item := range items {
		for _, slide := range item.Slides {
			refs = append(refs, slideRef{itemID: item.ID, slideID: slide.ID})
		}
	}
	return refs
}

// Navigate walks the schedule's slide sequences in document order. Crossing
// an item boundary lands on the adjacent item's first (next) or last (prev)
// slide, which flattening gives for free. At either end of the sequence the
// call is a no-op apart from the UpdatedAt stamp. With no current slide,
// next enters at the first pair and prev at the last.
func Navigate(state models.PresentationState, items []*models.ScheduleItem, dir Direction, now time.Time) models.PresentationState {
	next := state.Clone()
	next.UpdatedAt = now

	refs := flatten(items)
	if len(refs) == 0 {
		return next
	}

	cur := -1
	if state.CurrentSlideID != nil {
		for i, ref := range refs {
			if ref.slideID == *state.CurrentSlideID {
				cur = i
				break
			}
		}
	}

	var target int
	switch {
	case cur == -1 && dir == DirectionNext:
		target = 0
	case cur == -1 && dir == DirectionPrev:
		target = len(refs) - 1
	case dir == DirectionNext:
		if cur == len(refs)-1 {
			return next
		}
		target = cur + 1
	default:
		if cur == 0 {
			return next
		}
		target = cur - 1
	}

	ref := refs[target]
	next.CurrentItemID = &ref.itemID
	next.CurrentSlideID = &ref.slideID
	return next
}
