// Package currencyapi fetches exchange rates from api.currencyapi.com.
package currencyapi

import (
	"context"
	"net/url"
	"time"

	"github.com/pricefolio/pricefolio/internal/clients/httpx"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/rs/zerolog"
)

// Name is the provider identifier used in rate sources and logs
const Name = "currencyapi"

// Client for currencyapi.com
type Client struct {
	baseURL string
	apiKey  string
	http    *httpx.Client
	log     zerolog.Logger
	now     func() time.Time
}

// NewClient creates a new currencyapi.com client
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: "https://api.currencyapi.com/v3",
		apiKey:  apiKey,
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

// FetchRate implements domain.RateProvider
func (c *Client) FetchRate(ctx context.Context, from, to domain.Currency) (domain.ExchangeRate, error) {
	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("base_currency", string(from))
	query.Set("currencies", string(to))

	doc, err := c.http.GetJSON(ctx, httpx.URL(c.baseURL, "/latest?%s", query.Encode()))
	if err != nil {
		return domain.ExchangeRate{}, err
	}

	rate, err := c.http.Positive(doc, "$.data."+string(to)+".value")
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
