package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from the YAML config file.
type Config struct {
	Login       Login       `mapstructure:"login"`
	AdFiles     []string    `mapstructure:"ad_files"`
	AdDefaults  AdDefaults  `mapstructure:"ad_defaults"`
	Platform    Platform    `mapstructure:"platform"`
	DownloadDir string      `mapstructure:"download_dir"`
	StatePath   string      `mapstructure:"state_path"`
	UpdateCheck UpdateCheck `mapstructure:"update_check"`
	Notify      Notify      `mapstructure:"notify"`
}

// Login holds the platform account credentials.
type Login struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// AdDefaults are applied to ad files that leave the corresponding field unset.
type AdDefaults struct {
	Type                  string `mapstructure:"type"`
	PriceType             string `mapstructure:"price_type"`
	ShippingType          string `mapstructure:"shipping_type"`
	RepublicationInterval int    `mapstructure:"republication_interval_days"`
}

// Platform describes how to reach the classifieds platform.
type Platform struct {
	BaseURL string `mapstructure:"base_url"`
	Proxy   Proxy  `mapstructure:"proxy"`
}

// Proxy is an optional outbound proxy for platform requests.
type Proxy struct {
	Type     string `mapstructure:"type"` // http, https or socks5
	Address  string `mapstructure:"address"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// UpdateCheck controls the release check performed before ad commands.
type UpdateCheck struct {
	Enabled     bool   `mapstructure:"enabled"`
	ReleasesURL string `mapstructure:"releases_url"`
}

// Notify configures optional Telegram notifications about command results.
type Notify struct {
	TelegramToken  string `mapstructure:"telegram_token"`
	TelegramChatID int64  `mapstructure:"telegram_chat_id"`
}

// Overrides are CLI-supplied values that take precedence over file-sourced
// config fields. Only fields explicitly set by the caller replace loaded
// values.
type Overrides struct {
	DownloadDir *string
}

// NotFoundError is returned by Load when the config file does not exist.
// The default file has already been written by the time it is returned.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s", e.Path)
}

// ParseError is returned by Load when an existing config file is malformed.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse config file %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

const envPrefix = "KLEINANZEIGEN_BOT"

// defaultConfig is the commented template written by CreateDefault. It must
// stay human-editable and parseable by Load.
const defaultConfig = `# kleinanzeigen-bot configuration

login:
  username: changeme
  password: changeme

# Glob patterns of the ad description files to manage.
ad_files:
  - "ads/*.yaml"

# Values applied to ads that do not set the field themselves.
ad_defaults:
  type: OFFER
  price_type: NEGOTIABLE
  shipping_type: SHIPPING
  republication_interval_days: 7

platform:
  base_url: "https://www.kleinanzeigen.de"
  # proxy:
  #   type: socks5
  #   address: "127.0.0.1:1080"

# Where downloaded ads are written.
download_dir: "downloaded-ads"

# Local state database used to detect changed and due ads.
state_path: "kleinanzeigen-bot.db"

update_check:
  enabled: true

# notify:
#   telegram_token: ""
#   telegram_chat_id: 0
`

// Store loads and creates config files on disk.
type Store struct{}

// NewStore returns a config store backed by the local filesystem.
func NewStore() *Store { return &Store{} }

// CreateDefault writes the default config template to path. If a file
// already exists there it is left untouched and an error-level diagnostic is
// emitted; the call itself still succeeds so that the create-config command
// completes without aborting the run.
func (s *Store) CreateDefault(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err == nil {
		log.Error().Str("path", abs).Msg("Config file already exists, not overwriting it")
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	log.Info().Msgf("Saving [%s]...", abs)
	if err := os.WriteFile(abs, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write default config %s: %w", abs, err)
	}
	return nil
}

// Load reads the config file at path, applies ov and returns the merged
// configuration. When the file does not exist, a default file is created
// first and a NotFoundError naming the resolved path is returned: the caller
// sees both the side effect and the failure.
func (s *Store) Load(path string, ov *Overrides) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config path %s: %w", path, err)
	}

	if _, err := os.Stat(abs); os.IsNotExist(err) {
		if createErr := s.CreateDefault(abs); createErr != nil {
			log.Error().Err(createErr).Msg("Failed to create default config")
		}
		return nil, &NotFoundError{Path: abs}
	}

	v := viper.New()
	v.SetConfigFile(abs)

	v.SetDefault("ad_defaults.type", "OFFER")
	v.SetDefault("ad_defaults.price_type", "NEGOTIABLE")
	v.SetDefault("ad_defaults.shipping_type", "SHIPPING")
	v.SetDefault("ad_defaults.republication_interval_days", 7)
	v.SetDefault("platform.base_url", "https://www.kleinanzeigen.de")
	v.SetDefault("download_dir", "downloaded-ads")
	v.SetDefault("state_path", "kleinanzeigen-bot.db")
	v.SetDefault("update_check.enabled", true)
	v.SetDefault("update_check.releases_url", "https://api.github.com/repos/1cu/kleinanzeigen-bot/releases/latest")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, &ParseError{Path: abs, Err: err}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ParseError{Path: abs, Err: err}
	}

	applyOverrides(&cfg, ov)
	log.Debug().Str("path", abs).Msg("Config loaded")
	return &cfg, nil
}

// applyOverrides copies explicitly set override fields onto cfg. Unset
// fields keep the loaded value.
func applyOverrides(cfg *Config, ov *Overrides) {
	if ov == nil {
		return
	}
	if ov.DownloadDir != nil {
		cfg.DownloadDir = *ov.DownloadDir
	}
}
