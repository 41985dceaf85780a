// Package twse provides a client for the TWSE open data endpoints
package twse

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/twdash/internal/common"
	"github.com/bobmcallan/twdash/internal/fetch"
)

const (
	DefaultBaseURL   = "https://www.twse.com.tw"
	DefaultRateLimit = 3 // requests per second
)

// Client talks to the TWSE daily price table and the market-wide
// foreign trading table. All requests go through the smart-fetch
// client, so relay failover applies transparently.
type Client struct {
	baseURL string
	fetcher *fetch.Client
	logger  *common.Logger
	limiter *rate.Limiter
	now     func() time.Time // injectable for tests
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithFetcher sets the smart-fetch client used for transport
func WithFetcher(fetcher *fetch.Client) ClientOption {
	return func(c *Client) {
		c.fetcher = fetcher
	}
}

// NewClient creates a new TWSE client.
// No API key is required; these are public endpoints.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		fetcher: fetch.NewClient(),
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// taipeiLocation is the exchange's local timezone, used when probing
// for the most recent trading days.
var taipeiLocation = mustLoadLocation("Asia/Taipei")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		// Fallback to a fixed zone if tzdata is unavailable (e.g., minimal container)
		return time.FixedZone("CST", 8*60*60)
	}
	return loc
}
