// Package interfaces defines the seams between the bot lifecycle controller
// and its collaborators, so each can be replaced with a test double via
// dependency injection.
package interfaces

import (
	"context"

	"github.com/1cu/kleinanzeigen-bot/internal/ads"
	"github.com/1cu/kleinanzeigen-bot/internal/config"
)

// ConfigLoader loads and creates config files.
type ConfigLoader interface {
	// Load returns the merged configuration for path. When the file is
	// missing it writes a default file and returns *config.NotFoundError.
	Load(path string, ov *config.Overrides) (*config.Config, error)
	// CreateDefault writes the default config unless path already exists.
	CreateDefault(path string) error
}

// AdSource provides the ads matched by a selector.
type AdSource interface {
	Load(ctx context.Context, cfg *config.Config, selector string) ([]ads.LoadedAd, error)
}

// UpdateChecker checks for a newer release. It reports nothing on success
// and returns an error on failure.
type UpdateChecker interface {
	CheckForUpdates(ctx context.Context) error
}

// Publisher drives the remote classifieds platform.
type Publisher interface {
	Login(ctx context.Context, cfg *config.Config) error
	Publish(ctx context.Context, ad *ads.Ad) (int64, error)
	Delete(ctx context.Context, id int64) error
	Download(ctx context.Context, selector string) ([]ads.Ad, error)
}

// Notifier delivers result notifications.
type Notifier interface {
	Send(ctx context.Context, text string) error
	Name() string
}
