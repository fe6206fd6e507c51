// Package platform talks to the classifieds platform on behalf of the bot.
// It implements the call contract of the publisher boundary; DOM-level page
// automation is deliberately not part of this client.
package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/1cu/kleinanzeigen-bot/internal/ads"
	"github.com/1cu/kleinanzeigen-bot/internal/config"
)

const (
	// The platform throttles aggressive clients, stay well below its limit.
	requestsPerSecond = 2
	requestTimeout    = 60 * time.Second
)

// Client is a session-scoped HTTP client for the platform API.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
}

// NewClient builds a client from the platform section of the config,
// including the optional outbound proxy.
func NewClient(cfg *config.Config) (*Client, error) {
	httpClient, err := newHTTPClient(&cfg.Platform.Proxy)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	httpClient.Jar = jar

	return &Client{
		http:    httpClient,
		baseURL: cfg.Platform.BaseURL,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond*2),
	}, nil
}

// Login authenticates the session with the configured credentials.
func (c *Client) Login(ctx context.Context, cfg *config.Config) error {
	payload := map[string]string{
		"username": cfg.Login.Username,
		"password": cfg.Login.Password,
	}
	if err := c.do(ctx, http.MethodPost, "/api/login", payload, nil); err != nil {
		return fmt.Errorf("login failed for %s: %w", cfg.Login.Username, err)
	}
	log.Info().Str("username", cfg.Login.Username).Msg("Logged in")
	return nil
}

// Publish creates or updates the ad on the platform and returns its id.
func (c *Client) Publish(ctx context.Context, ad *ads.Ad) (int64, error) {
	var result struct {
		ID int64 `json:"id"`
	}
	path := "/api/ads"
	method := http.MethodPost
	if ad.ID != 0 {
		path = fmt.Sprintf("/api/ads/%d", ad.ID)
		method = http.MethodPut
	}
	if err := c.do(ctx, method, path, ad, &result); err != nil {
		return 0, fmt.Errorf("failed to publish ad %q: %w", ad.Title, err)
	}
	if result.ID == 0 {
		result.ID = ad.ID
	}
	log.Info().Int64("id", result.ID).Str("title", ad.Title).Msg("Ad published")
	return result.ID, nil
}

// Delete removes the ad with the given platform id.
func (c *Client) Delete(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/ads/%d", id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete ad %d: %w", id, err)
	}
	log.Info().Int64("id", id).Msg("Ad deleted")
	return nil
}

// Download fetches the account's ads from the platform. The selector is
// passed through so the server can pre-filter.
func (c *Client) Download(ctx context.Context, selector string) ([]ads.Ad, error) {
	var result []ads.Ad
	path := fmt.Sprintf("/api/ads?selector=%s", selector)
	if err := c.do(ctx, http.MethodGet, path, nil, &result); err != nil {
		return nil, fmt.Errorf("failed to download ads: %w", err)
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", "kleinanzeigen-bot")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: status %d, body: %s", method, path, resp.StatusCode, string(raw))
	}
	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response of %s %s: %w", method, path, err)
		}
	}
	return nil
}
