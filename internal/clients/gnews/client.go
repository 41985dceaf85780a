// Package gnews provides a client for the Google News RSS search feed
package gnews

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/twdash/internal/common"
	"github.com/bobmcallan/twdash/internal/fetch"
	"github.com/bobmcallan/twdash/internal/interfaces"
	"github.com/bobmcallan/twdash/internal/models"
)

// Ensure Client implements NewsClient
var _ interfaces.NewsClient = (*Client)(nil)

const (
	DefaultBaseURL   = "https://news.google.com"
	DefaultLanguage  = "zh-TW"
	DefaultRegion    = "TW"
	DefaultEdition   = "TW:zh-Hant"
	DefaultRateLimit = 2 // requests per second
)

// Client talks to the Google News RSS search endpoint. The feed needs
// no API key; language, region and edition select the Taiwan edition
// by default.
type Client struct {
	baseURL  string
	language string
	region   string
	edition  string
	fetcher  *fetch.Client
	logger   *common.Logger
	limiter  *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithEdition sets the feed language, region and edition parameters
func WithEdition(language, region, edition string) ClientOption {
	return func(c *Client) {
		c.language = language
		c.region = region
		c.edition = edition
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

// NewClient creates a new Google News RSS client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		language: DefaultLanguage,
		region:   DefaultRegion,
		edition:  DefaultEdition,
		fetcher:  fetch.NewClient(),
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:   common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title   string `xml:"title"`
	Link    string `xml:"link"`
	PubDate string `xml:"pubDate"`
}

// Search runs a free-text query against the RSS search feed and
// returns at most limit entries in feed order (limit <= 0 means no
// cap). Items missing a title or a link are dropped; the publish date
// passes through verbatim.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.NewsItem, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := fmt.Sprintf("%s/rss/search?q=%s&hl=%s&gl=%s&ceid=%s",
		c.baseURL, url.QueryEscape(query), c.language, c.region, url.QueryEscape(c.edition))

	start := time.Now()
	text, err := c.fetcher.FetchText(ctx, reqURL)
	if err != nil {
		c.logger.Warn().Err(err).Str("query", query).Msg("news feed fetch failed")
		return nil, err
	}

	var doc rssDocument
	if err := xml.Unmarshal([]byte(fetch.ExtractXML(text)), &doc); err != nil {
		return nil, &fetch.ParseError{Source: "gnews rss", Err: err}
	}

	items := make([]models.NewsItem, 0, len(doc.Channel.Items))
	for _, item := range doc.Channel.Items {
		title := strings.TrimSpace(item.Title)
		link := strings.TrimSpace(item.Link)
		if title == "" || link == "" {
			continue
		}
		items = append(items, models.NewsItem{
			Title: title,
			Link:  link,
			Date:  strings.TrimSpace(item.PubDate),
		})
		if limit > 0 && len(items) >= limit {
			break
		}
	}

	c.logger.Debug().
		Str("query", query).
		Int("items", len(items)).
		Dur("elapsed", time.Since(start)).
		Msg("news feed fetched")

	return items, nil
}
