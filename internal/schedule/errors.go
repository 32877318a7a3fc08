package schedule

import "errors"

// Custom schedule service errors
var (
	// ErrItemNotFound indicates the requested schedule item does not exist
	ErrItemNotFound = errors.New("schedule item not found")

	// ErrSlideNotFound indicates the requested slide does not exist
	ErrSlideNotFound = errors.New("slide not found")

	// ErrAnchorNotFound indicates the insert-after anchor does not exist
	ErrAnchorNotFound = errors.New("anchor item not found")

	// ErrInvalidItemType indicates an unknown schedule item type
	ErrInvalidItemType = errors.New("invalid schedule item type")

	// ErrEmptyTitle indicates a missing item title
	ErrEmptyTitle = errors.New("title must not be empty")

	// ErrReorderMismatch indicates the reorder payload's id set does not
	// exactly match current schedule membership
	ErrReorderMismatch = errors.New("reorder id set does not match schedule membership")
)

// IsItemNotFound checks if the error is an item not found error
func IsItemNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}

// IsReorderMismatch checks if the error is a reorder mismatch error
func IsReorderMismatch(err error) bool {
	return errors.Is(err, ErrReorderMismatch)
}
