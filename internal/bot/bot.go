// Package bot owns the lifecycle of one CLI invocation: logging setup,
// config loading, command execution and the guaranteed release of the log
// file handle.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/1cu/kleinanzeigen-bot/internal/ads"
	"github.com/1cu/kleinanzeigen-bot/internal/config"
	"github.com/1cu/kleinanzeigen-bot/internal/logging"
	"github.com/1cu/kleinanzeigen-bot/internal/notify"
	"github.com/1cu/kleinanzeigen-bot/internal/platform"
	"github.com/1cu/kleinanzeigen-bot/internal/update"
	"github.com/1cu/kleinanzeigen-bot/pkg/interfaces"
)

// Invocation is the parsed, validated representation of the CLI request.
type Invocation struct {
	Command     string
	ConfigPath  string // absolute
	AdsSelector string
	LogFile     string
	Verbose     bool
	Overrides   config.Overrides
}

// Bot ties parsing, logging setup, config loading and command execution
// together. It exclusively owns the file log handle; Close must run on
// every exit path, which main guarantees with a defer around the run.
type Bot struct {
	version string

	inv     Invocation
	cfg     *config.Config
	fileLog *logging.FileHandle

	loader      interfaces.ConfigLoader
	source      interfaces.AdSource
	setupLog    func(logging.Config) (*logging.FileHandle, error)
	newPub      func(*config.Config) (interfaces.Publisher, error)
	newChecker  func(*config.Config) interfaces.UpdateChecker
	newNotifier func(*config.Notify) (interfaces.Notifier, error)

	checker interfaces.UpdateChecker

	closeOnce sync.Once
	closeErr  error
}

// Option customizes a Bot, mainly so tests can substitute collaborators.
type Option func(*Bot)

// WithVersion sets the version reported by the version command and used by
// the update check.
func WithVersion(v string) Option {
	return func(b *Bot) { b.version = v }
}

// WithConfigLoader replaces the config store.
func WithConfigLoader(l interfaces.ConfigLoader) Option {
	return func(b *Bot) { b.loader = l }
}

// WithAdSource replaces the ad file source.
func WithAdSource(s interfaces.AdSource) Option {
	return func(b *Bot) { b.source = s }
}

// WithLogSetup replaces the file logging setup, so tests can keep their own
// log capture in place.
func WithLogSetup(fn func(logging.Config) (*logging.FileHandle, error)) Option {
	return func(b *Bot) { b.setupLog = fn }
}

// WithPublisher replaces the platform client factory.
func WithPublisher(fn func(*config.Config) (interfaces.Publisher, error)) Option {
	return func(b *Bot) { b.newPub = fn }
}

// WithUpdateChecker replaces the update checker factory.
func WithUpdateChecker(fn func(*config.Config) interfaces.UpdateChecker) Option {
	return func(b *Bot) { b.newChecker = fn }
}

// WithNotifier replaces the notifier factory.
func WithNotifier(fn func(*config.Notify) (interfaces.Notifier, error)) Option {
	return func(b *Bot) { b.newNotifier = fn }
}

// New creates a bot with the production collaborators wired in.
func New(opts ...Option) *Bot {
	b := &Bot{
		version:  "dev",
		loader:   config.NewStore(),
		source:   ads.NewFileSource(),
		setupLog: logging.Setup,
		newPub: func(cfg *config.Config) (interfaces.Publisher, error) {
			return platform.NewClient(cfg)
		},
		newNotifier: func(cfg *config.Notify) (interfaces.Notifier, error) {
			n, err := notify.NewTelegramNotifier(cfg)
			if n == nil || err != nil {
				return nil, err
			}
			return n, nil
		},
	}
	b.newChecker = func(cfg *config.Config) interfaces.UpdateChecker {
		return update.NewChecker(nil, cfg.UpdateCheck.ReleasesURL, b.version)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Version returns the version the bot was built with.
func (b *Bot) Version() string { return b.version }

// SetInvocation records the parsed CLI request. Called by the dispatcher
// before any command handler runs.
func (b *Bot) SetInvocation(inv Invocation) { b.inv = inv }

// Invocation returns the recorded CLI request.
func (b *Bot) Invocation() Invocation { return b.inv }

// Config returns the loaded configuration, or nil before LoadConfig.
func (b *Bot) Config() *config.Config { return b.cfg }

// FileLog returns the file log handle, or nil before ConfigureFileLogging.
func (b *Bot) FileLog() *logging.FileHandle { return b.fileLog }

// ConfigureFileLogging opens the file log sink. A failure here is fatal to
// the run.
func (b *Bot) ConfigureFileLogging() error {
	if b.fileLog != nil {
		return nil
	}
	handle, err := b.setupLog(logging.Config{
		File:       b.inv.LogFile,
		TimeFormat: time.RFC3339,
	})
	if err != nil {
		return fmt.Errorf("failed to configure file logging: %w", err)
	}
	b.fileLog = handle
	return nil
}

// LoadConfig loads the config file recorded in the invocation, applying the
// CLI overrides. Errors propagate to the caller; diagnostics emitted along
// the way (such as the default-config creation notice) stay in the log.
func (b *Bot) LoadConfig() error {
	cfg, err := b.loader.Load(b.inv.ConfigPath, &b.inv.Overrides)
	if err != nil {
		return err
	}
	b.cfg = cfg
	return nil
}

func (b *Bot) ensureConfig() error {
	if b.cfg != nil {
		return nil
	}
	return b.LoadConfig()
}

// CheckForUpdates runs the release check against the loaded configuration.
// The checker is constructed lazily, once per run.
func (b *Bot) CheckForUpdates(ctx context.Context) error {
	if err := b.ensureConfig(); err != nil {
		return err
	}
	if !b.cfg.UpdateCheck.Enabled {
		log.Debug().Msg("Update check disabled")
		return nil
	}
	if b.checker == nil {
		b.checker = b.newChecker(b.cfg)
	}
	return b.checker.CheckForUpdates(ctx)
}

func (b *Bot) notify(ctx context.Context, text string) {
	if err := b.ensureConfig(); err != nil {
		return
	}
	n, err := b.newNotifier(&b.cfg.Notify)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create notifier")
		return
	}
	if n == nil {
		return
	}
	if err := n.Send(ctx, text); err != nil {
		log.Warn().Err(err).Str("notifier", n.Name()).Msg("Failed to send notification")
	}
}

// Close releases the file log handle. It is idempotent and must be the only
// place that closes the handle.
func (b *Bot) Close() error {
	b.closeOnce.Do(func() {
		if b.fileLog != nil {
			b.closeErr = b.fileLog.Close()
		}
	})
	return b.closeErr
}
