package player

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/showdeck/showdeck/internal/logger"
)

const (
	// Process termination timeouts
	terminationTimeout = 5 * time.Second
	killTimeout        = 2 * time.Second
)

// ErrProcessTimeout indicates the player process survived SIGKILL
var ErrProcessTimeout = errors.New("process termination timeout")

// launchPlayer starts the player headless and idle with a private control
// endpoint, ready to accept commands without rendering anything.
func launchPlayer(binary, socketPath string) (*exec.Cmd, error) {
	args := []string{
		"--idle=yes",
		"--no-video",
		"--no-terminal",
		"--audio-display=no",
		"--input-ipc-server=" + socketPath,
	}

	execCmd := exec.Command(binary, args...)

	stdout, err := execCmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderr, err := execCmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	if err := execCmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start player: %w", err)
	}

	go capturePlayerOutput(execCmd.Process.Pid, stdout, "stdout")
	go capturePlayerOutput(execCmd.Process.Pid, stderr, "stderr")

	logger.Log.Info().
		Int("pid", execCmd.Process.Pid).
		Str("binary", binary).
		Str("socket", socketPath).
		Msg("Player process launched")

	return execCmd, nil
}

// terminateProcess terminates the player gracefully (SIGTERM) then
// forcefully (SIGKILL). exited is closed by the monitor goroutine that owns
// cmd.Wait, so this never reaps the process itself.
func terminateProcess(cmd *exec.Cmd, exited <-chan struct{}) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	pid := cmd.Process.Pid

	select {
	case <-exited:
		return nil
	default:
	}

	logger.Log.Debug().
		Int("pid", pid).
		Msg("Sending SIGTERM to player process")

	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}

	select {
	case <-exited:
		logger.Log.Info().
			Int("pid", pid).
			Msg("Player process terminated gracefully")
		return nil
	case <-time.After(terminationTimeout):
	}

	logger.Log.Warn().
		Int("pid", pid).
		Dur("timeout", terminationTimeout).
		Msg("Player process didn't exit gracefully, sending SIGKILL")

	if err := cmd.Process.Kill(); err != nil {
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		return fmt.Errorf("failed to kill process: %w", err)
	}

	select {
	case <-exited:
		logger.Log.Info().
			Int("pid", pid).
			Msg("Player process killed")
		return nil
	case <-time.After(killTimeout):
		return fmt.Errorf("%w: process %d did not die after SIGKILL", ErrProcessTimeout, pid)
	}
}

// capturePlayerOutput captures and logs output from the player process
func capturePlayerOutput(pid int, reader io.Reader, streamName string) {
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := scanner.Text()
		if looksLikeError(line) {
			logger.Log.Error().
				Int("player_pid", pid).
				Str("stream", streamName).
				Str("output", line).
				Msg("Player error output")
		} else {
			logger.Log.Debug().
				Int("player_pid", pid).
				Str("stream", streamName).
				Str("output", line).
				Msg("Player output")
		}
	}

	if err := scanner.Err(); err != nil {
		logger.Log.Warn().
			Err(err).
			Int("player_pid", pid).
			Str("stream", streamName).
			Msg("Error reading player output")
	}
}

// looksLikeError checks if an output line contains error indicators
func looksLikeError(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "error") ||
		strings.Contains(lower, "failed") ||
		strings.Contains(lower, "fatal")
}
