package player

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/showdeck/showdeck/internal/logger"
)

// playerBinaryName is the external audio renderer the supervisor drives
const playerBinaryName = "mpv"

// wellKnownPaths are checked before falling back to a PATH lookup
var wellKnownPaths = []string{
	"/usr/bin/mpv",
	"/usr/local/bin/mpv",
	"/opt/homebrew/bin/mpv",
	"/snap/bin/mpv",
}

// locateExecutable finds the player binary: a configured override wins, then
// well-known filesystem paths, then PATH.
func locateExecutable(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("%w: configured path %s: %v", ErrExecutableNotFound, configured, err)
		}
		return configured, nil
	}

	for _, path := range wellKnownPaths {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			logger.Log.Debug().
				Str("path", path).
				Msg("Player executable found at well-known path")
			return path, nil
		}
	}

	path, err := exec.LookPath(playerBinaryName)
	if err != nil {
		return "", fmt.Errorf("%w: %s not in well-known paths or PATH", ErrExecutableNotFound, playerBinaryName)
	}

	logger.Log.Debug().
		Str("path", path).
		Msg("Player executable found via PATH")
	return path, nil
}
