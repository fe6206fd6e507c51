package ads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentHashIgnoresBookkeepingFields(t *testing.T) {
	ad := &Ad{Title: "Bike", Description: "Good condition", Price: 120}
	base, err := ad.ContentHash()
	require.NoError(t, err)

	now := time.Now()
	ad.ID = 1234
	ad.CreatedOn = &now
	ad.UpdatedOn = &now
	same, err := ad.ContentHash()
	require.NoError(t, err)
	assert.Equal(t, base, same, "id and timestamps must not affect the hash")

	ad.Price = 99
	changed, err := ad.ContentHash()
	require.NoError(t, err)
	assert.NotEqual(t, base, changed)
}

func TestIsActiveDefaultsToTrue(t *testing.T) {
	assert.True(t, (&Ad{}).IsActive())

	inactive := false
	assert.False(t, (&Ad{Active: &inactive}).IsActive())
}

func TestSanitizeDescriptionStripsHTML(t *testing.T) {
	got := SanitizeDescription(`<p>Nice &amp; <b>shiny</b><script>alert(1)</script></p>`)
	assert.Equal(t, "Nice & shiny", got)
}
