// Package fetch performs HTTP GETs with transparent relay failover and
// isolates payloads embedded in noisy relay responses.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bobmcallan/twdash/internal/common"
)

const DefaultTimeout = 30 * time.Second

// Relay rewrites a target URL to route through a passthrough service.
// Relays are stateless and independent; their order is a static
// preference, not adaptive.
type Relay func(target string) string

// RelayFromTemplate builds a Relay from a template containing a {url}
// placeholder, replaced with the query-escaped target.
func RelayFromTemplate(tmpl string) Relay {
	return func(target string) string {
		return strings.ReplaceAll(tmpl, "{url}", url.QueryEscape(target))
	}
}

// RelaysFromTemplates builds the ordered relay list from config templates.
func RelaysFromTemplates(tmpls []string) []Relay {
	relays := make([]Relay, 0, len(tmpls))
	for _, t := range tmpls {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		relays = append(relays, RelayFromTemplate(t))
	}
	return relays
}

// Client fetches text over HTTP with automatic fallback across a direct
// attempt and an ordered relay list.
type Client struct {
	httpClient *http.Client
	relays     []Relay
	userAgent  string
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRelays sets the ordered relay fallback list
func WithRelays(relays []Relay) ClientOption {
	return func(c *Client) {
		c.relays = relays
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent sets the User-Agent header sent on every attempt
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a smart-fetch client. With no relays configured it
// degrades to plain direct GETs.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0 Safari/537.36",
		logger:     common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FetchText GETs the target URL, trying the direct route first and then
// each relay in order, short-circuiting on the first success. One
// attempt per endpoint, no retries, no backoff. Returns *FetchError
// only when every attempt failed.
func (c *Client) FetchText(ctx context.Context, target string) (string, error) {
	attempts := 0

	text, err := c.get(ctx, target)
	attempts++
	if err == nil {
		return text, nil
	}
	lastErr := err
	c.logger.Debug().Str("url", target).Err(err).Msg("Direct fetch failed, trying relays")

	for i, relay := range c.relays {
		text, err = c.get(ctx, relay(target))
		attempts++
		if err == nil {
			c.logger.Debug().Str("url", target).Int("relay", i).Msg("Relay fetch succeeded")
			return text, nil
		}
		lastErr = err
		c.logger.Debug().Str("url", target).Int("relay", i).Err(err).Msg("Relay fetch failed")
	}

	c.logger.Warn().Str("url", target).Int("attempts", attempts).Err(lastErr).Msg("All fetch attempts failed")
	return "", &FetchError{URL: target, Attempts: attempts, Err: lastErr}
}

// get performs a single GET attempt. Any non-2xx status is a failure.
func (c *Client) get(ctx context.Context, reqURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "zh-TW,zh;q=0.9,en;q=0.8")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("status %d from %s", resp.StatusCode, reqURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug().Str("url", reqURL).Int("bytes", len(body)).Dur("elapsed", time.Since(start)).Msg("Fetched")
	return string(body), nil
}
