package player

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/showdeck/showdeck/internal/logger"
)

const (
	ipcDialRetryInterval = 100 * time.Millisecond
	ipcWriteTimeout      = 2 * time.Second
	ipcEventBuffer       = 64
)

// ipcEvent is one inbound message on the control channel: a property-change
// or lifecycle event from the player, or a command reply.
type ipcEvent struct {
	Event     string          `json:"event,omitempty"`
	ID        int             `json:"id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Error     string          `json:"error,omitempty"`
	RequestID int             `json:"request_id,omitempty"`
}

// ipcRequest is one outbound command line
type ipcRequest struct {
	Command   []interface{} `json:"command"`
	RequestID int           `json:"request_id"`
}

// commander is the command surface the supervisor issues player commands
// through; tests substitute a fake.
type commander interface {
	command(args ...interface{}) error
}

// ipcConn speaks the player's newline-delimited JSON protocol over the
// private unix socket.
type ipcConn struct {
	conn   net.Conn
	events chan ipcEvent
	done   chan struct{}

	mu     sync.Mutex
	nextID int
}

// dialChannel waits for the control endpoint to appear and connects to it.
// The player creates the socket shortly after launch, so dialing retries
// until the startup timeout elapses.
func dialChannel(socketPath string, timeout time.Duration) (*ipcConn, error) {
	deadline := time.Now().Add(timeout)
	for {
		conn, err := net.DialTimeout("unix", socketPath, ipcDialRetryInterval)
		if err == nil {
			c := &ipcConn{
				conn:   conn,
				events: make(chan ipcEvent, ipcEventBuffer),
				done:   make(chan struct{}),
			}
			go c.readLoop()
			return c, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("control channel not ready after %v: %w", timeout, err)
		}
		time.Sleep(ipcDialRetryInterval)
	}
}

// readLoop turns inbound lines into events until the connection dies, then
// closes the event channel so the consumer observes the disconnect.
func (c *ipcConn) readLoop() {
	defer close(c.done)
	defer close(c.events)

	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event ipcEvent
		if err := json.Unmarshal(line, &event); err != nil {
			logger.Log.Warn().
				Err(err).
				Str("line", string(line)).
				Msg("Unparseable control channel message")
			continue
		}

		// Command replies are fire-and-forget; only surface failures.
		if event.Event == "" {
			if event.Error != "" && event.Error != "success" {
				logger.Log.Warn().
					Int("request_id", event.RequestID).
					Str("error", event.Error).
					Msg("Player command rejected")
			}
			continue
		}

		c.events <- event
	}

	if err := scanner.Err(); err != nil {
		logger.Log.Debug().
			Err(err).
			Msg("Control channel read loop ended")
	}
}

// command writes one command line. Writes are serialized and bounded so a
// wedged player cannot block the caller indefinitely.
func (c *ipcConn) command(args ...interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	payload, err := json.Marshal(ipcRequest{Command: args, RequestID: c.nextID})
	if err != nil {
		return fmt.Errorf("failed to encode player command: %w", err)
	}
	payload = append(payload, '\n')

	if err := c.conn.SetWriteDeadline(time.Now().Add(ipcWriteTimeout)); err != nil {
		return fmt.Errorf("failed to set channel write deadline: %w", err)
	}
	if _, err := c.conn.Write(payload); err != nil {
		return fmt.Errorf("failed to write player command: %w", err)
	}
	return nil
}

// subscribe registers property-change notifications for every observed
// property. Observer ids are the 1-based table positions.
func (c *ipcConn) subscribe() error {
	for i, name := range observedProperties {
		if err := c.command("observe_property", i+1, name); err != nil {
			return fmt.Errorf("failed to observe %s: %w", name, err)
		}
	}
	return nil
}

// close tears the channel down; the read loop exits and closes events
func (c *ipcConn) close() {
	_ = c.conn.Close()
	<-c.done
}
