package player

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateExecutable_ConfiguredOverrideWins(t *testing.T) {
	fake := filepath.Join(t.TempDir(), "player-bin")
	require.NoError(t, os.WriteFile(fake, []byte("#!/bin/sh\n"), 0o755))

	path, err := locateExecutable(fake)
	require.NoError(t, err)
	assert.Equal(t, fake, path)
}

func TestLocateExecutable_ConfiguredPathMissing(t *testing.T) {
	_, err := locateExecutable(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrExecutableNotFound)
}
