package player

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/showdeck/showdeck/internal/config"
	"github.com/showdeck/showdeck/internal/logger"
)

// Supervisor owns the external player's lifecycle across three independent
// axes: the process, the control channel (with indefinite reconnect while
// the process is alive), and playback state. It is the only writer of State.
type Supervisor struct {
	cfg   config.PlayerConfig
	queue *QueueService
	rng   func(n int) int

	mu             sync.Mutex
	procState      ProcessState
	chanState      ChannelState
	state          State
	cmd            *exec.Cmd
	ipc            *ipcConn
	conn           commander
	procExited     chan struct{}
	reconnectTimer *time.Timer
	stopping       bool
	listener       func(State)
}

// NewSupervisor creates a new player supervisor instance
func NewSupervisor(cfg config.PlayerConfig, queue *QueueService) *Supervisor {
	return &Supervisor{
		cfg:       cfg,
		queue:     queue,
		rng:       rand.Intn,
		procState: ProcessNotStarted,
		chanState: ChannelDisconnected,
		state:     newState(cfg.Volume),
	}
}

// SetStateListener registers the callback invoked with a state snapshot
// after every playback-state change. Must be called before Start.
func (s *Supervisor) SetStateListener(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = fn
}

// CurrentState returns a snapshot of the playback state
func (s *Supervisor) CurrentState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ProcessStatus returns the process and channel lifecycle states
func (s *Supervisor) ProcessStatus() (ProcessState, ChannelState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.procState, s.chanState
}

// Start locates and launches the player, connects the control channel and
// subscribes to property notifications. A missing executable or failed
// launch leaves the core running with the player unavailable.
func (s *Supervisor) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.procState != ProcessNotStarted {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.procState = ProcessStarting
	s.mu.Unlock()

	// Queue entries persist across restarts; surface the reloaded playback
	// context without auto-resuming anything.
	if count, err := s.queue.Length(ctx); err == nil {
		logger.Log.Info().
			Int("queue_length", count).
			Msg("Now-playing queue reloaded")
	}

	binary, err := locateExecutable(s.cfg.Binary)
	if err != nil {
		s.mu.Lock()
		s.procState = ProcessNotStarted
		s.mu.Unlock()
		logger.Log.Warn().
			Err(err).
			Msg("Player executable not found, playback unavailable")
		return fmt.Errorf("%w: %v", ErrPlayerUnavailable, err)
	}

	// A stale endpoint from a previous run would make the dial connect to
	// nothing; clear it before launch.
	_ = os.Remove(s.cfg.SocketPath)

	cmd, err := launchPlayer(binary, s.cfg.SocketPath)
	if err != nil {
		s.mu.Lock()
		s.procState = ProcessNotStarted
		s.mu.Unlock()
		logger.Log.Warn().
			Err(err).
			Msg("Player launch failed, playback unavailable")
		return fmt.Errorf("%w: %v", ErrPlayerUnavailable, err)
	}

	exited := make(chan struct{})
	s.mu.Lock()
	s.cmd = cmd
	s.procExited = exited
	s.procState = ProcessRunning
	s.chanState = ChannelConnecting
	s.mu.Unlock()

	go s.monitorProcess(cmd, exited)

	if err := s.connect(); err != nil {
		logger.Log.Warn().
			Err(err).
			Msg("Control channel not ready, retrying in background")
		s.mu.Lock()
		s.chanState = ChannelDisconnected
		s.scheduleReconnectLocked()
		s.mu.Unlock()
	}

	return nil
}

// connect dials the control endpoint, subscribes to property notifications
// and applies the configured volume.
func (s *Supervisor) connect() error {
	conn, err := dialChannel(s.cfg.SocketPath, s.cfg.StartupTimeout)
	if err != nil {
		return err
	}

	if err := conn.subscribe(); err != nil {
		conn.close()
		return err
	}
	if err := conn.command("set_property", "volume", s.cfg.Volume); err != nil {
		logger.Log.Warn().
			Err(err).
			Msg("Failed to apply initial volume")
	}

	s.mu.Lock()
	s.ipc = conn
	s.conn = conn
	s.chanState = ChannelConnected
	s.mu.Unlock()

	go s.consumeEvents(conn)

	logger.Log.Info().
		Str("socket", s.cfg.SocketPath).
		Msg("Control channel connected")
	return nil
}

// monitorProcess waits for the player process and translates its exit into
// a state reset. No auto-restart.
func (s *Supervisor) monitorProcess(cmd *exec.Cmd, exited chan struct{}) {
	err := cmd.Wait()
	close(exited)

	s.mu.Lock()
	if s.cmd != cmd {
		s.mu.Unlock()
		return
	}
	intentional := s.stopping
	s.procState = ProcessExited
	s.chanState = ChannelDisconnected
	s.cancelReconnectLocked()
	conn := s.ipc
	s.ipc = nil
	s.conn = nil
	now := time.Now().UTC()
	s.state.resetPlayback(now)
	snapshot := s.state
	s.mu.Unlock()

	if conn != nil {
		conn.close()
	}

	if intentional {
		logger.Log.Debug().Msg("Player process exited during shutdown")
		return
	}

	logger.Log.Error().
		Err(err).
		Int("pid", cmd.Process.Pid).
		Msg("Player process exited, playback reset to idle")
	s.notify(snapshot)
}

// consumeEvents dispatches control-channel events until the channel closes,
// then hands off to reconnect handling.
func (s *Supervisor) consumeEvents(conn *ipcConn) {
	for event := range conn.events {
		switch event.Event {
		case "property-change":
			s.handlePropertyChange(event)
		case "end-file":
			// Only a natural end advances; stop and replace also emit
			// end-file with their own reasons.
			if event.Reason == "eof" {
				s.handleEndOfTrack()
			}
		default:
			// start-file, idle, and friends carry no state we track
		}
	}
	s.handleChannelClosed(conn)
}

// handlePropertyChange folds one notification into the state via the
// property table.
func (s *Supervisor) handlePropertyChange(event ipcEvent) {
	s.mu.Lock()
	changed := applyProperty(&s.state, event.Name, event.Data, time.Now().UTC())
	snapshot := s.state
	s.mu.Unlock()

	if changed {
		s.notify(snapshot)
	}
}

// handleEndOfTrack runs the auto-advance algorithm: shuffled play picks a
// uniformly random different index, sequential play moves to the next entry
// or stops past the end.
func (s *Supervisor) handleEndOfTrack() {
	s.mu.Lock()

	length, err := s.queue.Length(context.Background())
	if err != nil {
		s.mu.Unlock()
		logger.Log.Error().
			Err(err).
			Msg("Auto-advance failed to read queue length")
		return
	}

	next, ok := nextAfterEnd(s.state.CurrentIndex, length, s.state.IsShuffled, s.rng)
	if !ok {
		s.state.resetPlayback(time.Now().UTC())
		snapshot := s.state
		s.mu.Unlock()
		s.notify(snapshot)
		logger.Log.Info().Msg("Queue finished, playback stopped")
		return
	}

	snapshot, err := s.playIndexLocked(context.Background(), next)
	s.mu.Unlock()
	if err != nil {
		logger.Log.Error().
			Err(err).
			Int("index", next).
			Msg("Auto-advance failed to start next track")
		return
	}
	s.notify(snapshot)
}

// handleChannelClosed reacts to the control channel dying: while the
// process is alive the supervisor retries indefinitely with a fixed delay.
func (s *Supervisor) handleChannelClosed(conn *ipcConn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ipc != conn {
		return
	}
	s.ipc = nil
	s.conn = nil
	s.chanState = ChannelDisconnected

	if s.stopping || s.procState != ProcessRunning {
		return
	}

	logger.Log.Warn().
		Dur("retry_in", s.cfg.ReconnectDelay).
		Msg("Control channel closed, scheduling reconnect")
	s.scheduleReconnectLocked()
}

// scheduleReconnectLocked arms the reconnect timer. Must hold s.mu.
func (s *Supervisor) scheduleReconnectLocked() {
	s.cancelReconnectLocked()
	s.reconnectTimer = time.AfterFunc(s.cfg.ReconnectDelay, s.reconnect)
}

// cancelReconnectLocked stops any pending reconnect. Must hold s.mu.
func (s *Supervisor) cancelReconnectLocked() {
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
}

// reconnect is the timer callback retrying the control channel
func (s *Supervisor) reconnect() {
	s.mu.Lock()
	if s.stopping || s.procState != ProcessRunning {
		s.mu.Unlock()
		return
	}
	s.chanState = ChannelConnecting
	s.mu.Unlock()

	if err := s.connect(); err != nil {
		logger.Log.Warn().
			Err(err).
			Dur("retry_in", s.cfg.ReconnectDelay).
			Msg("Control channel reconnect failed")
		s.mu.Lock()
		if !s.stopping && s.procState == ProcessRunning {
			s.chanState = ChannelDisconnected
			s.scheduleReconnectLocked()
		}
		s.mu.Unlock()
	}
}

// availableLocked reports whether commands can reach the player. Must hold s.mu.
func (s *Supervisor) availableLocked() bool {
	return s.chanState == ChannelConnected && s.conn != nil
}

// dropUnavailable logs and rejects a command issued while the player is
// unreachable. Commands are dropped, never queued.
func dropUnavailable(command string) error {
	logger.Log.Warn().
		Str("command", command).
		Msg("Player unavailable, command dropped")
	return ErrPlayerUnavailable
}

// playIndexLocked loads and starts the track at the given queue index,
// returning the snapshot the caller delivers after unlocking. Must hold s.mu.
func (s *Supervisor) playIndexLocked(ctx context.Context, index int) (State, error) {
	if !s.availableLocked() {
		return State{}, dropUnavailable("play")
	}

	track, err := s.queue.TrackAt(ctx, index)
	if err != nil {
		return State{}, err
	}

	if err := s.conn.command("loadfile", track.FilePath, "replace"); err != nil {
		return State{}, fmt.Errorf("failed to load track: %w", err)
	}
	if err := s.conn.command("set_property", "pause", false); err != nil {
		return State{}, fmt.Errorf("failed to unpause: %w", err)
	}

	now := time.Now().UTC()
	s.state.CurrentIndex = index
	s.state.CurrentTrack = track
	s.state.IsPlaying = true
	s.state.CurrentTime = 0
	s.state.Duration = track.Duration
	s.state.UpdatedAt = now

	logger.Log.Info().
		Int("index", index).
		Str("title", track.Title).
		Msg("Track started")
	return s.state, nil
}

// Play resumes playback, starting at queue index 0 when nothing is loaded.
// Like every command below, the listener is notified synchronously after the
// lock drops, so snapshots reach the hub in the order the changes happened.
func (s *Supervisor) Play(ctx context.Context) error {
	s.mu.Lock()

	if s.state.CurrentTrack == nil {
		snapshot, err := s.playIndexLocked(ctx, 0)
		s.mu.Unlock()
		if err != nil {
			return err
		}
		s.notify(snapshot)
		return nil
	}

	if !s.availableLocked() {
		s.mu.Unlock()
		return dropUnavailable("play")
	}
	if err := s.conn.command("set_property", "pause", false); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to resume: %w", err)
	}
	s.state.IsPlaying = true
	s.state.UpdatedAt = time.Now().UTC()
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// Pause pauses playback, keeping the current track loaded
func (s *Supervisor) Pause(ctx context.Context) error {
	s.mu.Lock()

	if !s.availableLocked() {
		s.mu.Unlock()
		return dropUnavailable("pause")
	}
	if err := s.conn.command("set_property", "pause", true); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to pause: %w", err)
	}
	s.state.IsPlaying = false
	s.state.UpdatedAt = time.Now().UTC()
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// Stop halts playback and clears the current track
func (s *Supervisor) Stop(ctx context.Context) error {
	s.mu.Lock()

	if !s.availableLocked() {
		s.mu.Unlock()
		return dropUnavailable("stop")
	}
	if err := s.conn.command("stop"); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to stop: %w", err)
	}
	s.state.resetPlayback(time.Now().UTC())
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// Seek jumps to an absolute position in the current track
func (s *Supervisor) Seek(ctx context.Context, seconds float64) error {
	s.mu.Lock()

	if !s.availableLocked() {
		s.mu.Unlock()
		return dropUnavailable("seek")
	}
	if err := s.conn.command("seek", seconds, "absolute"); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to seek: %w", err)
	}
	s.state.CurrentTime = seconds
	s.state.UpdatedAt = time.Now().UTC()
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// SetVolume sets the output volume (0-100)
func (s *Supervisor) SetVolume(ctx context.Context, level int) error {
	if level < 0 || level > 100 {
		return fmt.Errorf("volume %d: %w", level, ErrInvalidVolume)
	}

	s.mu.Lock()

	if !s.availableLocked() {
		s.mu.Unlock()
		return dropUnavailable("set-volume")
	}
	if err := s.conn.command("set_property", "volume", level); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to set volume: %w", err)
	}
	s.state.Volume = level
	s.state.UpdatedAt = time.Now().UTC()
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// SetMuted mutes or unmutes the output
func (s *Supervisor) SetMuted(ctx context.Context, muted bool) error {
	s.mu.Lock()

	if !s.availableLocked() {
		s.mu.Unlock()
		return dropUnavailable("set-muted")
	}
	if err := s.conn.command("set_property", "mute", muted); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to set mute: %w", err)
	}
	s.state.IsMuted = muted
	s.state.UpdatedAt = time.Now().UTC()
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// SetShuffled toggles shuffle for subsequent auto-advance decisions
func (s *Supervisor) SetShuffled(ctx context.Context, shuffled bool) error {
	s.mu.Lock()
	s.state.IsShuffled = shuffled
	s.state.UpdatedAt = time.Now().UTC()
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// Next moves to the following track using the same algorithm as end-of-track
// auto-advance; past the end it stops and clears the current track.
func (s *Supervisor) Next(ctx context.Context) error {
	s.mu.Lock()

	if !s.availableLocked() {
		s.mu.Unlock()
		return dropUnavailable("next")
	}

	length, err := s.queue.Length(ctx)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to read queue: %w", err)
	}

	next, ok := nextAfterEnd(s.state.CurrentIndex, length, s.state.IsShuffled, s.rng)
	if !ok {
		if err := s.conn.command("stop"); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to stop: %w", err)
		}
		s.state.resetPlayback(time.Now().UTC())
		snapshot := s.state
		s.mu.Unlock()
		s.notify(snapshot)
		return nil
	}

	snapshot, err := s.playIndexLocked(ctx, next)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(snapshot)
	return nil
}

// Previous restarts the current track when more than 3 seconds in;
// otherwise it steps back one track, or restarts when already first.
func (s *Supervisor) Previous(ctx context.Context) error {
	s.mu.Lock()

	if !s.availableLocked() {
		s.mu.Unlock()
		return dropUnavailable("previous")
	}

	if previousAction(s.state.CurrentTime, s.state.CurrentIndex) == prevStepBack {
		snapshot, err := s.playIndexLocked(ctx, s.state.CurrentIndex-1)
		s.mu.Unlock()
		if err != nil {
			return err
		}
		s.notify(snapshot)
		return nil
	}

	if err := s.conn.command("seek", 0, "absolute"); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to restart track: %w", err)
	}
	s.state.CurrentTime = 0
	s.state.UpdatedAt = time.Now().UTC()
	snapshot := s.state
	s.mu.Unlock()

	s.notify(snapshot)
	return nil
}

// PlayAtIndex starts playback at an explicit queue position
func (s *Supervisor) PlayAtIndex(ctx context.Context, index int) error {
	s.mu.Lock()
	snapshot, err := s.playIndexLocked(ctx, index)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(snapshot)
	return nil
}

// notify delivers a state snapshot to the registered listener
func (s *Supervisor) notify(state State) {
	s.mu.Lock()
	fn := s.listener
	s.mu.Unlock()
	if fn != nil {
		fn(state)
	}
}

// Shutdown tears the player down: pending timers, control channel, process,
// the control-endpoint file and in-memory state, each step individually
// best-effort so one failure never blocks the next.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	if s.stopping {
		s.mu.Unlock()
		return
	}
	s.stopping = true
	s.cancelReconnectLocked()
	conn := s.ipc
	s.ipc = nil
	s.conn = nil
	cmd := s.cmd
	exited := s.procExited
	s.chanState = ChannelDisconnected
	s.mu.Unlock()

	logger.Log.Info().Msg("Shutting down player supervisor")

	if conn != nil {
		conn.close()
	}

	if cmd != nil && exited != nil {
		if err := terminateProcess(cmd, exited); err != nil {
			logger.Log.Warn().
				Err(err).
				Msg("Failed to terminate player process")
		}
	}

	if err := os.Remove(s.cfg.SocketPath); err != nil && !os.IsNotExist(err) {
		logger.Log.Warn().
			Err(err).
			Str("socket", s.cfg.SocketPath).
			Msg("Failed to remove control endpoint")
	}

	s.mu.Lock()
	s.procState = ProcessExited
	s.state = newState(s.cfg.Volume)
	s.mu.Unlock()

	logger.Log.Info().Msg("Player supervisor stopped")
}
