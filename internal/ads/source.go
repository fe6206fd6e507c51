package ads

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/1cu/kleinanzeigen-bot/internal/config"
	"github.com/1cu/kleinanzeigen-bot/internal/state"
)

// LoadedAd pairs a parsed ad with the file it came from and its change
// status relative to the state database.
type LoadedAd struct {
	Path    string
	Ad      *Ad
	Hash    string
	Changed bool
}

// FileSource loads ads from the YAML files matched by the config's ad_files
// globs.
type FileSource struct{}

// NewFileSource returns the default filesystem-backed ad source.
func NewFileSource() *FileSource { return &FileSource{} }

// Load expands the configured globs, parses each ad file, applies the
// configured ad defaults and keeps the ads matched by selector. Supported
// selectors: "all", "new" (no platform id yet), "changed" (content differs
// from the last recorded run), "due" (republication interval elapsed) or a
// comma-separated list of ad ids.
func (f *FileSource) Load(ctx context.Context, cfg *config.Config, selector string) ([]LoadedAd, error) {
	paths, err := expandGlobs(cfg.AdFiles)
	if err != nil {
		return nil, err
	}

	var st *state.Store
	if selector == "changed" || selector == "due" {
		st, err = state.Open(cfg.StatePath)
		if err != nil {
			return nil, err
		}
		defer st.Close()
	}

	ids, err := parseSelector(selector)
	if err != nil {
		return nil, err
	}

	var loaded []LoadedAd
	for _, path := range paths {
		ad, err := Read(path)
		if err != nil {
			return nil, err
		}
		if !ad.IsActive() {
			log.Debug().Str("path", path).Msg("Skipping inactive ad")
			continue
		}
		applyDefaults(ad, &cfg.AdDefaults)

		hash, err := ad.ContentHash()
		if err != nil {
			return nil, err
		}
		entry := LoadedAd{Path: path, Ad: ad, Hash: hash}

		if st != nil {
			rec, err := st.Get(ctx, path)
			if err != nil {
				return nil, err
			}
			entry.Changed = rec == nil || rec.ContentHash != hash
			if selector == "due" && !isDue(ad, rec) {
				continue
			}
		}

		switch {
		case selector == "all":
		case selector == "new":
			if ad.ID != 0 {
				continue
			}
		case selector == "changed":
			if !entry.Changed {
				continue
			}
		case selector == "due":
			// already filtered above
		default:
			if _, ok := ids[ad.ID]; !ok {
				continue
			}
		}
		loaded = append(loaded, entry)
	}

	log.Info().Int("count", len(loaded)).Str("selector", selector).Msg("Ads loaded")
	return loaded, nil
}

func expandGlobs(globs []string) ([]string, error) {
	seen := map[string]struct{}{}
	var paths []string
	for _, pattern := range globs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid ad_files pattern %q: %w", pattern, err)
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			paths = append(paths, m)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// parseSelector returns the id set for an id-list selector, or nil for the
// named selectors.
func parseSelector(selector string) (map[int64]struct{}, error) {
	switch selector {
	case "all", "new", "changed", "due":
		return nil, nil
	}
	ids := map[int64]struct{}{}
	for _, part := range strings.Split(selector, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unsupported ads selector %q", selector)
		}
		ids[id] = struct{}{}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("unsupported ads selector %q", selector)
	}
	return ids, nil
}

func isDue(ad *Ad, rec *state.AdState) bool {
	if rec == nil || rec.PublishedAt == nil {
		return true
	}
	interval := ad.RepublicationInterval
	if interval <= 0 {
		return false
	}
	return time.Since(*rec.PublishedAt) >= time.Duration(interval)*24*time.Hour
}

func applyDefaults(ad *Ad, def *config.AdDefaults) {
	if ad.Type == "" {
		ad.Type = def.Type
	}
	if ad.PriceType == "" {
		ad.PriceType = def.PriceType
	}
	if ad.ShippingType == "" {
		ad.ShippingType = def.ShippingType
	}
	if ad.RepublicationInterval == 0 {
		ad.RepublicationInterval = def.RepublicationInterval
	}
}
