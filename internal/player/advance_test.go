package player

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextAfterEnd_Sequential(t *testing.T) {
	tests := []struct {
		name     string
		current  int
		length   int
		wantNext int
		wantOK   bool
	}{
		{"advances to next", 0, 3, 1, true},
		{"advances mid-queue", 1, 3, 2, true},
		{"stops past last", 2, 3, 0, false},
		{"single track stops", 0, 1, 0, false},
		{"empty queue stops", 0, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, ok := nextAfterEnd(tt.current, tt.length, false, nil)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantNext, next)
		})
	}
}

func TestNextAfterEnd_ShuffleAvoidsCurrent(t *testing.T) {
	// RNG that returns the current index a few times before a fresh pick
	calls := 0
	rng := func(n int) int {
		calls++
		if calls < 4 {
			return 1
		}
		return 3
	}

	next, ok := nextAfterEnd(1, 5, true, rng)
	assert.True(t, ok)
	assert.Equal(t, 3, next)
	assert.Equal(t, 4, calls)
}

func TestNextAfterEnd_ShuffleCapFallsBackDeterministically(t *testing.T) {
	// A pathological RNG that always lands on the current track
	rng := func(n int) int { return 2 }

	next, ok := nextAfterEnd(2, 5, true, rng)
	assert.True(t, ok)
	assert.Equal(t, 3, next)
}

func TestNextAfterEnd_ShuffleWrapsOnCapAtLastIndex(t *testing.T) {
	rng := func(n int) int { return 4 }

	next, ok := nextAfterEnd(4, 5, true, rng)
	assert.True(t, ok)
	assert.Equal(t, 0, next)
}

func TestNextAfterEnd_ShuffleSingleTrackStops(t *testing.T) {
	// One track shuffled degenerates to sequential: past the end means stop
	next, ok := nextAfterEnd(0, 1, true, func(n int) int { return 0 })
	assert.False(t, ok)
	assert.Equal(t, 0, next)
}

func TestPreviousAction(t *testing.T) {
	tests := []struct {
		name         string
		currentTime  float64
		currentIndex int
		want         prevAction
	}{
		{"deep into track restarts", 5.0, 2, prevRestart},
		{"just past threshold restarts", 3.1, 2, prevRestart},
		{"at threshold steps back", 3.0, 2, prevStepBack},
		{"early in track steps back", 1.0, 2, prevStepBack},
		{"first track restarts", 1.0, 0, prevRestart},
		{"no track restarts", 0.0, -1, prevRestart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, previousAction(tt.currentTime, tt.currentIndex))
		})
	}
}
