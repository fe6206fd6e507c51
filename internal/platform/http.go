package platform

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/proxy"

	"github.com/1cu/kleinanzeigen-bot/internal/config"
)

// newHTTPClient returns an HTTP client configured with the given proxy, or
// a default client when no proxy is set.
func newHTTPClient(p *config.Proxy) (*http.Client, error) {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if p != nil && p.Address != "" {
		proxyURL := &url.URL{Scheme: p.Type, Host: p.Address}
		if p.Username != "" {
			proxyURL.User = url.UserPassword(p.Username, p.Password)
		}

		switch p.Type {
		case "http", "https":
			transport.Proxy = http.ProxyURL(proxyURL)
		case "socks5":
			dialer, err := proxy.FromURL(proxyURL, proxy.Direct)
			if err != nil {
				return nil, fmt.Errorf("failed to create SOCKS5 dialer from %s: %w", proxyURL, err)
			}
			contextDialer, ok := dialer.(proxy.ContextDialer)
			if !ok {
				return nil, fmt.Errorf("SOCKS5 dialer does not implement proxy.ContextDialer")
			}
			transport.DialContext = contextDialer.DialContext
			transport.Proxy = nil
		default:
			return nil, fmt.Errorf("unsupported proxy type: %s", p.Type)
		}
	}

	return &http.Client{
		Transport: transport,
		Timeout:   requestTimeout,
	}, nil
}
