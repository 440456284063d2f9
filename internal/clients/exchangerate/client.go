// Package exchangerate fetches currency exchange rates from exchangerate-api.com.
package exchangerate

import (
	"context"
	"net/url"
	"time"

	"github.com/pricefolio/pricefolio/internal/clients/httpx"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/rs/zerolog"
)

// Name is the provider identifier used in rate sources and logs
const Name = "exchangerate-api"

// Client for exchangerate-api.com
type Client struct {
	baseURL string
	http    *httpx.Client
	log     zerolog.Logger
	now     func() time.Time
}

// NewClient creates a new exchangerate-api.com client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: "https://api.exchangerate-api.com/v4/latest",
		http:    httpx.New(Name),
		log:     log.With().Str("client", Name).Logger(),
		now:     time.Now,
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

// FetchRate implements domain.RateProvider. The endpoint returns every rate for
// the base currency; only the requested target is read.
func (c *Client) FetchRate(ctx context.Context, from, to domain.Currency) (domain.ExchangeRate, error) {
	endpoint := httpx.URL(c.baseURL, "/%s", url.PathEscape(string(from)))
	c.log.Debug().Str("url", endpoint).Msg("Fetching rates")

	doc, err := c.http.GetJSON(ctx, endpoint)
	if err != nil {
		return domain.ExchangeRate{}, err
	}

	rate, err := c.http.Positive(doc, "$.rates."+string(to))
	if err != nil {
		return domain.ExchangeRate{}, err
	}

	c.log.Debug().
		Str("from", string(from)).
		Str("to", string(to)).
		Float64("rate", rate).
		Msg("Fetched rate")

	return domain.ExchangeRate{
		From:       from,
		To:         to,
		Rate:       rate,
		Source:     Name,
		ResolvedAt: c.now(),
	}, nil
}
