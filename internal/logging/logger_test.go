package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestLogFile(t *testing.T) *FileHandle {
	t.Helper()
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	handle, err := Setup(Config{File: filepath.Join(t.TempDir(), "test.log")})
	require.NoError(t, err)
	return handle
}

func TestSetupOpensFileHandle(t *testing.T) {
	handle := setupTestLogFile(t)
	assert.False(t, handle.IsClosed())

	log.Info().Msg("hello")
	content, err := os.ReadFile(handle.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "hello")
}

func TestCloseIsIdempotent(t *testing.T) {
	handle := setupTestLogFile(t)

	require.NoError(t, handle.Close())
	assert.True(t, handle.IsClosed())
	assert.NoError(t, handle.Close(), "second close is a no-op")
}

func TestWriteAfterCloseIsNoOp(t *testing.T) {
	handle := setupTestLogFile(t)
	require.NoError(t, handle.Close())

	// The global logger still references the handle, writes must not fail.
	n, err := handle.Write([]byte("dropped"))
	assert.NoError(t, err)
	assert.Equal(t, len("dropped"), n)
	log.Info().Msg("also dropped")
}

func TestSetupDoesNotRaiseVerboseLevel(t *testing.T) {
	prev := log.Logger
	prevLevel := zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prev
		zerolog.SetGlobalLevel(prevLevel)
	})

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	handle, err := Setup(Config{File: filepath.Join(t.TempDir(), "test.log"), Level: "info"})
	require.NoError(t, err)
	defer handle.Close()

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel(), "-v must win over the configured level")
}

func TestSetupFailsOnUnwritablePath(t *testing.T) {
	_, err := Setup(Config{File: filepath.Join(t.TempDir(), "no", "such", "dir", "test.log")})
	assert.Error(t, err)
}
