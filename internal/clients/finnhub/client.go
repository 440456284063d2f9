// Package finnhub fetches current prices from the Finnhub quote endpoint.
package finnhub

import (
	"context"
	"net/url"
	"time"

	"github.com/pricefolio/pricefolio/internal/clients/httpx"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/rs/zerolog"
)

// Name is the provider identifier used in quote sources and logs
const Name = "finnhub"

// Client for Finnhub
type Client struct {
	baseURL string
	token   string
	http    *httpx.Client
	log     zerolog.Logger
	now     func() time.Time
}

// NewClient creates a new Finnhub client
func NewClient(token string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: "https://finnhub.io/api/v1",
		token:   token,
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

// Name implements domain.PriceProvider
func (c *Client) Name() string {
	return Name
}

// FetchQuote implements domain.PriceProvider.
// Finnhub answers unknown symbols with all-zero fields, which Positive rejects.
func (c *Client) FetchQuote(ctx context.Context, ticker string) (domain.PriceQuote, error) {
	query := url.Values{}
	query.Set("symbol", ticker)
	query.Set("token", c.token)

	doc, err := c.http.GetJSON(ctx, httpx.URL(c.baseURL, "/quote?%s", query.Encode()))
	if err != nil {
		return domain.PriceQuote{}, err
	}

	price, err := c.http.Positive(doc, "$.c")
	if err != nil {
		return domain.PriceQuote{}, err
	}

	return domain.PriceQuote{
		Ticker:    ticker,
		Price:     price,
		Source:    domain.LiveSource(Name),
		Timestamp: c.now(),
	}, nil
}
