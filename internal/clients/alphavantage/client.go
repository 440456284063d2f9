// Package alphavantage fetches quotes from the Alpha Vantage GLOBAL_QUOTE endpoint.
// The free tier allows 25 requests per day, so the client tracks a daily budget
// and keeps recent answers in memory.
package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pricefolio/pricefolio/internal/clients/httpx"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/rs/zerolog"
)

// Name is the provider identifier used in quote sources and logs
const Name = "alphavantage"

const (
	dailyRequestLimit = 25
	quoteCacheTTL     = 15 * time.Minute
	pricePath         = `$["Global Quote"]["05. price"]`
)

// ErrRateLimitExceeded is returned once the daily request budget is spent
type ErrRateLimitExceeded struct {
	Limit int
}

func (e ErrRateLimitExceeded) Error() string {
	return fmt.Sprintf("alpha vantage daily limit of %d requests exceeded", e.Limit)
}

type cacheEntry struct {
	expiresAt time.Time
	data      interface{}
}

// Client for Alpha Vantage
type Client struct {
	baseURL string
	apiKey  string
	http    *httpx.Client
	log     zerolog.Logger
	now     func() time.Time

	mu           sync.Mutex
	requestCount int
	counterDay   string

	cacheMu sync.RWMutex
	cache   map[string]cacheEntry
}

// NewClient creates a new Alpha Vantage client
func NewClient(apiKey string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: "https://www.alphavantage.co",
		apiKey:  apiKey,
		http:    httpx.New(Name),
		log:     log.With().Str("client", Name).Logger(),
		now:     time.Now,
		cache:   make(map[string]cacheEntry),
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
	params := map[string]string{"symbol": ticker}
	cacheKey := buildCacheKey("GLOBAL_QUOTE", params)

	if cached, ok := c.getFromCache(cacheKey); ok {
		if price, ok := cached.(float64); ok {
			c.log.Debug().Str("ticker", ticker).Float64("price", price).Msg("Cache hit")
			return c.quote(ticker, price), nil
		}
	}

	if err := c.checkRateLimit(); err != nil {
		return domain.PriceQuote{}, &domain.ProviderError{
			Provider: Name,
			Err:      fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err),
		}
	}

	query := url.Values{}
	query.Set("function", "GLOBAL_QUOTE")
	query.Set("symbol", ticker)
	query.Set("apikey", c.apiKey)

	doc, err := c.http.GetJSON(ctx, httpx.URL(c.baseURL, "/query?%s", query.Encode()))
	if err != nil {
		return domain.PriceQuote{}, err
	}

	// Throttled or invalid-key answers come back as 200 with a note instead of data
	if m, ok := doc.(map[string]any); ok {
		for _, key := range []string{"Note", "Information", "Error Message"} {
			if msg, found := m[key]; found {
				return domain.PriceQuote{}, c.http.Errorf(domain.ErrProviderUnavailable, "%v", msg)
			}
		}
	}

	price, err := c.http.Positive(doc, pricePath)
	if err != nil {
		return domain.PriceQuote{}, err
	}

	c.setCache(cacheKey, price, quoteCacheTTL)
	return c.quote(ticker, price), nil
}

func (c *Client) quote(ticker string, price float64) domain.PriceQuote {
	return domain.PriceQuote{
		Ticker:    ticker,
		Price:     price,
		Source:    domain.LiveSource(Name),
		Timestamp: c.now(),
	}
}

// checkRateLimit consumes one request from today's budget
func (c *Client) checkRateLimit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollDay()
	if c.requestCount >= dailyRequestLimit {
		return ErrRateLimitExceeded{Limit: dailyRequestLimit}
	}
	c.requestCount++
	return nil
}

// GetRemainingRequests returns how many requests are left today
func (c *Client) GetRemainingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rollDay()
	return dailyRequestLimit - c.requestCount
}

// ResetDailyCounter restores the full daily budget
func (c *Client) ResetDailyCounter() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requestCount = 0
	c.counterDay = c.today()
}

// rollDay resets the counter when the UTC date changes. Caller holds c.mu.
func (c *Client) rollDay() {
	if today := c.today(); today != c.counterDay {
		c.counterDay = today
		c.requestCount = 0
	}
}

func (c *Client) today() string {
	return c.now().UTC().Format("2006-01-02")
}

func (c *Client) getFromCache(key string) (interface{}, bool) {
	c.cacheMu.RLock()
	defer c.cacheMu.RUnlock()

	entry, ok := c.cache[key]
	if !ok || !c.now().Before(entry.expiresAt) {
		return nil, false
	}
	return entry.data, true
}

func (c *Client) setCache(key string, data interface{}, ttl time.Duration) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.cache[key] = cacheEntry{data: data, expiresAt: c.now().Add(ttl)}
}

// ClearCache drops all cached responses
func (c *Client) ClearCache() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	c.cache = make(map[string]cacheEntry)
}

// buildCacheKey renders function and params in a stable order, without the API key
func buildCacheKey(function string, params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k != "apikey" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(function)
	for _, k := range keys {
		b.WriteString("&")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(params[k])
	}
	return b.String()
}
