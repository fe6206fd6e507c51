package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/1cu/kleinanzeigen-bot/internal/ads"
	"github.com/1cu/kleinanzeigen-bot/internal/state"
)

// CreateDefaultConfig writes the default config file unless one already
// exists at the invocation's config path.
func (b *Bot) CreateDefaultConfig() error {
	return b.loader.CreateDefault(b.inv.ConfigPath)
}

// Verify loads the configuration and all selected ad files, and runs the
// update check. It changes nothing on the platform.
func (b *Bot) Verify(ctx context.Context) error {
	if err := b.ensureConfig(); err != nil {
		return err
	}
	if err := b.CheckForUpdates(ctx); err != nil {
		return err
	}
	loaded, err := b.source.Load(ctx, b.cfg, b.inv.AdsSelector)
	if err != nil {
		return err
	}
	log.Info().Int("ads", len(loaded)).Msg("Config and ad files are valid")
	return nil
}

// Publish pushes the selected ads to the platform, writes the assigned ids
// back into the ad files and records the published state.
func (b *Bot) Publish(ctx context.Context) error {
	if err := b.ensureConfig(); err != nil {
		return err
	}
	if err := b.CheckForUpdates(ctx); err != nil {
		return err
	}
	loaded, err := b.source.Load(ctx, b.cfg, b.inv.AdsSelector)
	if err != nil {
		return err
	}
	if len(loaded) == 0 {
		log.Info().Str("selector", b.inv.AdsSelector).Msg("No ads to publish")
		return nil
	}

	pub, err := b.newPub(b.cfg)
	if err != nil {
		return err
	}
	if err := pub.Login(ctx, b.cfg); err != nil {
		return err
	}

	st, err := state.Open(b.cfg.StatePath)
	if err != nil {
		return err
	}
	defer st.Close()

	published := 0
	for _, entry := range loaded {
		id, err := pub.Publish(ctx, entry.Ad)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		entry.Ad.ID = id
		if entry.Ad.CreatedOn == nil {
			entry.Ad.CreatedOn = &now
		}
		entry.Ad.UpdatedOn = &now
		if err := ads.Save(entry.Path, entry.Ad); err != nil {
			return err
		}

		rec := &state.AdState{Path: entry.Path, AdID: &id, ContentHash: entry.Hash, PublishedAt: &now}
		if err := st.Upsert(ctx, rec); err != nil {
			return err
		}
		published++
	}

	log.Info().Int("count", published).Msg("Ads published")
	b.notify(ctx, fmt.Sprintf(":rocket: Published %d ad(s)", published))
	return nil
}

// DeleteAds removes the selected ads from the platform and clears their ids
// from the ad files.
func (b *Bot) DeleteAds(ctx context.Context) error {
	if err := b.ensureConfig(); err != nil {
		return err
	}
	loaded, err := b.source.Load(ctx, b.cfg, b.inv.AdsSelector)
	if err != nil {
		return err
	}

	pub, err := b.newPub(b.cfg)
	if err != nil {
		return err
	}
	if err := pub.Login(ctx, b.cfg); err != nil {
		return err
	}

	st, err := state.Open(b.cfg.StatePath)
	if err != nil {
		return err
	}
	defer st.Close()

	deleted := 0
	for _, entry := range loaded {
		if entry.Ad.ID == 0 {
			log.Debug().Str("path", entry.Path).Msg("Ad was never published, nothing to delete")
			continue
		}
		if err := pub.Delete(ctx, entry.Ad.ID); err != nil {
			return err
		}
		entry.Ad.ID = 0
		if err := ads.Save(entry.Path, entry.Ad); err != nil {
			return err
		}
		if err := st.Delete(ctx, entry.Path); err != nil {
			return err
		}
		deleted++
	}

	log.Info().Int("count", deleted).Msg("Ads deleted")
	b.notify(ctx, fmt.Sprintf(":wastebasket: Deleted %d ad(s)", deleted))
	return nil
}

// Download fetches the account's ads from the platform and writes them as
// editable YAML files into the download directory.
func (b *Bot) Download(ctx context.Context) error {
	if err := b.ensureConfig(); err != nil {
		return err
	}
	if err := b.CheckForUpdates(ctx); err != nil {
		return err
	}

	pub, err := b.newPub(b.cfg)
	if err != nil {
		return err
	}
	if err := pub.Login(ctx, b.cfg); err != nil {
		return err
	}

	remote, err := pub.Download(ctx, b.inv.AdsSelector)
	if err != nil {
		return err
	}
	if len(remote) == 0 {
		log.Info().Msg("No ads to download")
		return nil
	}

	st, err := state.Open(b.cfg.StatePath)
	if err != nil {
		return err
	}
	defer st.Close()

	for i := range remote {
		ad := &remote[i]
		ad.Description = ads.SanitizeDescription(ad.Description)

		path := filepath.Join(b.cfg.DownloadDir, fmt.Sprintf("ad_%d.yaml", ad.ID))
		if err := ads.Save(path, ad); err != nil {
			return err
		}

		hash, err := ad.ContentHash()
		if err != nil {
			return err
		}
		id := ad.ID
		now := time.Now().UTC()
		rec := &state.AdState{Path: path, AdID: &id, ContentHash: hash, PublishedAt: &now}
		if err := st.Upsert(ctx, rec); err != nil {
			return err
		}
		log.Info().Str("path", path).Int64("id", ad.ID).Msg("Ad downloaded")
	}

	log.Info().Int("count", len(remote)).Str("dir", b.cfg.DownloadDir).Msg("Download finished")
	return nil
}
