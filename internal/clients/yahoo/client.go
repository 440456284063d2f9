// Package yahoo fetches current prices from the Yahoo Finance chart API.
package yahoo

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/pricefolio/pricefolio/internal/clients/httpx"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/rs/zerolog"
)

// Name is the provider identifier used in quote sources and logs
const Name = "yahoo"

const pricePath = "$.chart.result[0].meta.regularMarketPrice"

// symbolAliases maps bare tickers to the listing Yahoo knows them by
var symbolAliases = map[string]string{
	"BEL":  "BEL.BR",
	"COLR": "COLR.BR",
	"BIRG": "BIRG.L",
}

// Client for the Yahoo Finance chart endpoint
type Client struct {
	baseURL string
	http    *httpx.Client
	log     zerolog.Logger
	now     func() time.Time
}

// NewClient creates a new Yahoo Finance client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		baseURL: "https://query1.finance.yahoo.com/v8/finance/chart",
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

// GetYahooSymbol converts a stored ticker to the Yahoo Finance symbol:
// AAPL.US -> AAPL, BEL -> BEL.BR, KBC.BR -> KBC.BR
func GetYahooSymbol(ticker string) string {
	symbol := strings.ToUpper(strings.TrimSpace(ticker))
	symbol = strings.TrimSuffix(symbol, ".US")
	if alias, ok := symbolAliases[symbol]; ok {
		return alias
	}
	return symbol
}

// FetchQuote implements domain.PriceProvider
func (c *Client) FetchQuote(ctx context.Context, ticker string) (domain.PriceQuote, error) {
	symbol := GetYahooSymbol(ticker)
	endpoint := httpx.URL(c.baseURL, "/%s", url.PathEscape(symbol))

	c.log.Debug().Str("ticker", ticker).Str("symbol", symbol).Msg("Fetching quote")

	doc, err := c.http.GetJSON(ctx, endpoint)
	if err != nil {
		return domain.PriceQuote{}, err
	}

	price, err := c.http.Positive(doc, pricePath)
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
