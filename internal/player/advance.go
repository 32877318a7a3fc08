package player

const (
	// previousRestartThreshold is how far into a track Previous restarts it
	// instead of stepping back a track.
	previousRestartThreshold = 3.0

	// shuffleMaxAttempts caps reject-and-resample so a pathological RNG can
	// never spin; past the cap the fallback is deterministic.
	shuffleMaxAttempts = 100
)

// nextAfterEnd picks the queue index to play after end-of-track. ok is false
// when playback should stop and the current track be cleared (sequential
// play ran past the end). rng returns a uniform value in [0, n).
func nextAfterEnd(current, length int, shuffled bool, rng func(n int) int) (next int, ok bool) {
	if length == 0 {
		return 0, false
	}

	if shuffled && length > 1 {
		for i := 0; i < shuffleMaxAttempts; i++ {
			candidate := rng(length)
			if candidate != current {
				return candidate, true
			}
		}
		return (current + 1) % length, true
	}

	if current+1 >= length {
		return 0, false
	}
	return current + 1, true
}

// prevAction is what Previous should do given the playback position
type prevAction int

const (
	prevRestart  prevAction = iota // seek to 0, index unchanged
	prevStepBack                   // switch to currentIndex-1
)

// previousAction decides between restarting the current track and stepping
// back. More than 3 seconds in, or already on the first track, restarts.
func previousAction(currentTime float64, currentIndex int) prevAction {
	if currentTime > previousRestartThreshold {
		return prevRestart
	}
	if currentIndex <= 0 {
		return prevRestart
	}
	return prevStepBack
}
