package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	TimeFormat string `mapstructure:"time_format"`
}

// FileHandle is the file-backed log sink owned by the bot. It stays usable
// as an io.Writer for the lifetime of the global logger: once closed, writes
// become no-ops instead of hitting a closed descriptor.
type FileHandle struct {
	mu     sync.Mutex
	file   *os.File
	closed bool
}

// Path returns the path the handle was opened with.
func (h *FileHandle) Path() string {
	return h.file.Name()
}

func (h *FileHandle) Write(p []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return len(p), nil
	}
	return h.file.Write(p)
}

// Close releases the underlying file. Safe to call multiple times.
func (h *FileHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	return h.file.Close()
}

// IsClosed reports whether the handle has been released.
func (h *FileHandle) IsClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Bootstrap installs a console-only logger for everything that runs before
// Setup, such as flag parsing errors.
func Bootstrap() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

// Setup initializes the global logger with a console writer mirrored to the
// given log file and returns the handle for the file sink. The caller owns
// the handle and must close it when the run is over.
func Setup(cfg Config) (*FileHandle, error) {
	file, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", cfg.File, err)
	}
	handle := &FileHandle{file: file}

	writers := []io.Writer{
		zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: cfg.TimeFormat},
		handle,
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()

	if cfg.Level != "" {
		level, err := zerolog.ParseLevel(cfg.Level)
		if err != nil {
			log.Warn().Str("configured_level", cfg.Level).Msg("Invalid log level, keeping current level")
		} else if level < zerolog.GlobalLevel() {
			// -v must win over the configured level.
			zerolog.SetGlobalLevel(level)
		}
	}

	log.Debug().Str("file", cfg.File).Str("level", zerolog.GlobalLevel().String()).Msg("Logger initialized")
	return handle, nil
}
