// Package marketwatch scrapes the last price from MarketWatch instrument pages.
package marketwatch

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pricefolio/pricefolio/internal/clients/httpx"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/rs/zerolog"
)

// Name is the provider identifier used in quote sources and logs
const Name = "marketwatch"

var (
	pricePattern = regexp.MustCompile(`"price":\s*"?([\d.]+)`)
	errNoPrice   = errors.New("no price found in page")
)

// Client for MarketWatch pages
type Client struct {
	baseURL string
	http    *httpx.Client
	log     zerolog.Logger
	now     func() time.Time
}

// NewClient creates a new MarketWatch scraper
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: "https://www.marketwatch.com/investing/stock",
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

// FetchQuote implements domain.PriceProvider
func (c *Client) FetchQuote(ctx context.Context, ticker string) (domain.PriceQuote, error) {
	symbol := strings.ToLower(ticker)
	body, err := c.http.GetBody(ctx, httpx.URL(c.baseURL, "/%s", url.PathEscape(symbol)))
	if err != nil {
		return domain.PriceQuote{}, err
	}

	price, err := ExtractPrice(body)
	if err != nil {
		return domain.PriceQuote{}, c.http.Errorf(domain.ErrInvalidQuote, "%v", err)
	}

	return domain.PriceQuote{
		Ticker:    ticker,
		Price:     price,
		Source:    domain.LiveSource(Name),
		Timestamp: c.now(),
	}, nil
}

// ExtractPrice finds the first embedded "price": <n> value in a page
func ExtractPrice(page []byte) (float64, error) {
	m := pricePattern.FindSubmatch(page)
	if m == nil {
		return 0, errNoPrice
	}
	price, err := strconv.ParseFloat(string(m[1]), 64)
	if err != nil {
		return 0, err
	}
	if !domain.ValidPrice(price) {
		return 0, errNoPrice
	}
	return price, nil
}
