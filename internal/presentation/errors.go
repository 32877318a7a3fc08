package presentation

import "errors"

// Custom presentation service errors
var (
	// ErrInvalidDirection indicates an unknown navigation direction
	ErrInvalidDirection = errors.New("invalid navigation direction")

	// ErrSlideNotInItem indicates a patch naming a slide outside the
	// current item's slide set
	ErrSlideNotInItem = errors.New("slide does not belong to the current item")

	// ErrItemNotFound indicates a patch referencing a nonexistent item
	ErrItemNotFound = errors.New("schedule item not found")
)
