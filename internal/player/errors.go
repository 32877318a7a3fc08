package player

import "errors"

// Custom player errors
var (
	// ErrPlayerUnavailable indicates the player process or its control
	// channel is not usable; commands are dropped, not queued
	ErrPlayerUnavailable = errors.New("player unavailable")

	// ErrExecutableNotFound indicates no player executable could be located
	ErrExecutableNotFound = errors.New("player executable not found")

	// ErrQueueIndexOutOfRange indicates a playback index outside the queue
	ErrQueueIndexOutOfRange = errors.New("queue index out of range")

	// ErrQueueItemNotFound indicates the requested queue entry does not exist
	ErrQueueItemNotFound = errors.New("queue item not found")

	// ErrFileNotFound indicates a queue entry references a nonexistent media file
	ErrFileNotFound = errors.New("media file not found")

	// ErrReorderMismatch indicates the reorder payload's id set does not
	// exactly match current queue membership
	ErrReorderMismatch = errors.New("reorder id set does not match queue membership")

	// ErrInvalidVolume indicates a volume level outside 0-100
	ErrInvalidVolume = errors.New("volume out of range 0-100")

	// ErrAlreadyStarted indicates the supervisor was started twice
	ErrAlreadyStarted = errors.New("player supervisor already started")
)

// IsUnavailable checks if the error is a player unavailable error
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrPlayerUnavailable)
}

// IsReorderMismatch checks if the error is a reorder mismatch error
func IsReorderMismatch(err error) bool {
	return errors.Is(err, ErrReorderMismatch)
}
