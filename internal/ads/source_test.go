package ads

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/1cu/kleinanzeigen-bot/internal/config"
	"github.com/1cu/kleinanzeigen-bot/internal/state"
)

func setupAdDir(t *testing.T) (*config.Config, string) {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"bike.yaml":  "title: Bike\nprice: 120\nid: 1234\n",
		"couch.yaml": "title: Couch\nprice: 80\n",
		"old.yaml":   "title: Old stuff\nactive: false\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	cfg := &config.Config{
		AdFiles:   []string{filepath.Join(dir, "*.yaml")},
		StatePath: filepath.Join(dir, "state.db"),
		AdDefaults: config.AdDefaults{
			Type:                  "OFFER",
			PriceType:             "NEGOTIABLE",
			ShippingType:          "SHIPPING",
			RepublicationInterval: 7,
		},
	}
	return cfg, dir
}

func TestLoadAllSkipsInactiveAds(t *testing.T) {
	cfg, _ := setupAdDir(t)
	source := NewFileSource()

	loaded, err := source.Load(context.Background(), cfg, "all")
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// Glob results are sorted by path.
	assert.Equal(t, "Bike", loaded[0].Ad.Title)
	assert.Equal(t, "Couch", loaded[1].Ad.Title)
}

func TestLoadAppliesAdDefaults(t *testing.T) {
	cfg, _ := setupAdDir(t)
	source := NewFileSource()

	loaded, err := source.Load(context.Background(), cfg, "all")
	require.NoError(t, err)
	for _, entry := range loaded {
		assert.Equal(t, "OFFER", entry.Ad.Type)
		assert.Equal(t, "NEGOTIABLE", entry.Ad.PriceType)
		assert.Equal(t, 7, entry.Ad.RepublicationInterval)
	}
}

func TestLoadNewSelectsUnpublishedAds(t *testing.T) {
	cfg, _ := setupAdDir(t)
	source := NewFileSource()

	loaded, err := source.Load(context.Background(), cfg, "new")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Couch", loaded[0].Ad.Title)
}

func TestLoadByIDList(t *testing.T) {
	cfg, _ := setupAdDir(t)
	source := NewFileSource()

	loaded, err := source.Load(context.Background(), cfg, "1234")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(1234), loaded[0].Ad.ID)
}

func TestLoadRejectsUnsupportedSelector(t *testing.T) {
	cfg, _ := setupAdDir(t)
	source := NewFileSource()

	_, err := source.Load(context.Background(), cfg, "bogus")
	assert.ErrorContains(t, err, "unsupported ads selector")
}

func TestLoadChangedComparesAgainstState(t *testing.T) {
	cfg, _ := setupAdDir(t)
	source := NewFileSource()
	ctx := context.Background()

	// Nothing recorded yet, every ad counts as changed.
	loaded, err := source.Load(ctx, cfg, "changed")
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	// Record the current hash of the first ad; it is no longer changed.
	st, err := state.Open(cfg.StatePath)
	require.NoError(t, err)
	err = st.Upsert(ctx, &state.AdState{Path: loaded[0].Path, ContentHash: loaded[0].Hash})
	require.NoError(t, err)
	require.NoError(t, st.Close())

	loaded, err = source.Load(ctx, cfg, "changed")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "Couch", loaded[0].Ad.Title)
}
