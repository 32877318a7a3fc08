// Package player supervises the external audio-rendering process, its
// control channel and the now-playing queue that drives auto-advance.
package player

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProcessState tracks the external player process lifecycle
type ProcessState string

// Process lifecycle constants
const (
	ProcessNotStarted ProcessState = "not-started"
	ProcessStarting   ProcessState = "starting"
	ProcessRunning    ProcessState = "running"
	ProcessExited     ProcessState = "exited"
)

// ChannelState tracks the control-channel lifecycle
type ChannelState string

// Control-channel lifecycle constants
const (
	ChannelDisconnected ChannelState = "disconnected"
	ChannelConnecting   ChannelState = "connecting"
	ChannelConnected    ChannelState = "connected"
)

// TrackInfo is a snapshot of the currently loaded track
type TrackInfo struct {
	FileID   uuid.UUID `json:"file_id"`
	Title    string    `json:"title"`
	FilePath string    `json:"file_path"`
	Duration float64   `json:"duration"`
}

// State is the externally visible playback state. It is mutated only by the
// Supervisor in response to process/channel events or accepted commands.
type State struct {
	IsPlaying    bool       `json:"is_playing"`
	CurrentTime  float64    `json:"current_time"`
	Duration     float64    `json:"duration"`
	Volume       int        `json:"volume"`
	IsMuted      bool       `json:"is_muted"`
	IsShuffled   bool       `json:"is_shuffled"`
	CurrentIndex int        `json:"current_index"` // -1 = none
	CurrentTrack *TrackInfo `json:"current_track"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// newState returns the idle baseline state
func newState(volume int) State {
	return State{
		Volume:       volume,
		CurrentIndex: -1,
		UpdatedAt:    time.Now().UTC(),
	}
}

// resetPlayback clears everything playback-related while keeping user
// preferences (volume, mute, shuffle) intact.
func (s *State) resetPlayback(now time.Time) {
	s.IsPlaying = false
	s.CurrentTime = 0
	s.Duration = 0
	s.CurrentIndex = -1
	s.CurrentTrack = nil
	s.UpdatedAt = now
}

// Properties the supervisor observes on the control channel
const (
	propTimePos  = "time-pos"
	propDuration = "duration"
	propPause    = "pause"
	propVolume   = "volume"
	propMute     = "mute"
)

// observedProperties is the subscription list sent on every (re)connect
var observedProperties = []string{propTimePos, propDuration, propPause, propVolume, propMute}

// propertyApplier folds one property-change notification into the state
type propertyApplier func(s *State, data json.RawMessage)

// propertyTable maps property names to state-field updates. A single table
// keeps event dispatch flat and each mapping independently testable.
var propertyTable = map[string]propertyApplier{
	propTimePos: func(s *State, data json.RawMessage) {
		var v float64
		if json.Unmarshal(data, &v) == nil {
			s.CurrentTime = v
		}
	},
	propDuration: func(s *State, data json.RawMessage) {
		var v float64
		if json.Unmarshal(data, &v) == nil {
			s.Duration = v
		}
	},
	propPause: func(s *State, data json.RawMessage) {
		var v bool
		if json.Unmarshal(data, &v) == nil {
			s.IsPlaying = !v && s.CurrentTrack != nil
		}
	},
	propVolume: func(s *State, data json.RawMessage) {
		var v float64
		if json.Unmarshal(data, &v) == nil {
			s.Volume = int(v)
		}
	},
	propMute: func(s *State, data json.RawMessage) {
		var v bool
		if json.Unmarshal(data, &v) == nil {
			s.IsMuted = v
		}
	},
}

// applyProperty dispatches one property change through the table. Unknown
// properties are ignored. Reports whether the state changed.
func applyProperty(s *State, name string, data json.RawMessage, now time.Time) bool {
	apply, ok := propertyTable[name]
	if !ok {
		return false
	}
	apply(s, data)
	s.UpdatedAt = now
	return true
}
