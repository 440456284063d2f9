// Package fixer fetches exchange rates from data.fixer.io.
package fixer

import (
	"context"
	"net/url"
	"time"

	"github.com/pricefolio/pricefolio/internal/clients/httpx"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/rs/zerolog"
)

// Name is the provider identifier used in rate sources and logs
const Name = "fixer"

// Client for Fixer
type Client struct {
	baseURL   string
	accessKey string
	http      *httpx.Client
	log       zerolog.Logger
	now       func() time.Time
}

// NewClient creates a new Fixer client
func NewClient(accessKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL:   "http://data.fixer.io/api",
		accessKey: accessKey,
		http:      httpx.New(Name),
		log:       log.With().Str("client", Name).Logger(),
		now:       time.Now,
	}
}

// WithBaseURL points the client at another host (tests, proxies)
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// Name implements domain.RateProvider
func (c *Client) Name() string {
	return Name
}

// FetchRate implements domain.RateProvider.
// Fixer reports failures as 200 responses with success=false.
func (c *Client) FetchRate(ctx context.Context, from, to domain.Currency) (domain.ExchangeRate, error) {
	query := url.Values{}
	query.Set("access_key", c.accessKey)
	query.Set("base", string(from))
	query.Set("symbols", string(to))

	doc, err := c.http.GetJSON(ctx, httpx.URL(c.baseURL, "/latest?%s", query.Encode()))
	if err != nil {
		return domain.ExchangeRate{}, err
	}

	ok, err := c.http.Bool(doc, "$.success")
	if err != nil {
		return domain.ExchangeRate{}, err
	}
	if !ok {
		return domain.ExchangeRate{}, c.http.Errorf(domain.ErrProviderUnavailable, "request rejected")
	}

	rate, err := c.http.Positive(doc, "$.rates."+string(to))
	if err != nil {
		return domain.ExchangeRate{}, err
	}

	return domain.ExchangeRate{
		From:       from,
		To:         to,
		Rate:       rate,
		Source:     Name,
		ResolvedAt: c.now(),
	}, nil
}
