// Package update checks the project's release feed for a newer version.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// release is the subset of the releases API response we care about.
type release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Checker queries the releases endpoint once per run.
type Checker struct {
	client      *http.Client
	releasesURL string
	current     string
}

// NewChecker creates a checker comparing against the given current version.
func NewChecker(client *http.Client, releasesURL, current string) *Checker {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Checker{client: client, releasesURL: releasesURL, current: current}
}

// CheckForUpdates fetches the latest release and logs a warning when it is
// newer than the running version. Failures are returned, not retried.
func (c *Checker) CheckForUpdates(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.releasesURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create update check request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("update check failed: status %d, body: %s", resp.StatusCode, string(body))
	}

	var rel release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return fmt.Errorf("failed to decode release info: %w", err)
	}

	latest := normalize(rel.TagName)
	current := normalize(c.current)
	if latest == "" || current == "" || current == "dev" || latest == current {
		log.Debug().Str("current", c.current).Str("latest", rel.TagName).Msg("No update available")
		return nil
	}

	log.Warn().
		Str("current", c.current).
		Str("latest", rel.TagName).
		Str("url", rel.HTMLURL).
		Msg("A newer release is available")
	return nil
}

func normalize(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}
