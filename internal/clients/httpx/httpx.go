// Package httpx holds the HTTP plumbing shared by every provider client:
// one GET per call, status checking, and numeric field extraction from JSON
// bodies via JSONPath. All failures are returned as *domain.ProviderError.
package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/pricefolio/pricefolio/internal/domain"
)

// DefaultTimeout bounds every client regardless of the caller's context
const DefaultTimeout = 10 * time.Second

const maxBodyBytes = 4 << 20

// Client is a small wrapper around http.Client that tags failures with a provider name
type Client struct {
	HTTP      *http.Client
	Provider  string
	UserAgent string
	Headers   map[string]string
}

// New creates a client with DefaultTimeout
func New(provider string) *Client {
	return &Client{
		HTTP:      &http.Client{Timeout: DefaultTimeout},
		Provider:  provider,
		UserAgent: "Mozilla/5.0 (compatible; pricefolio/1.0)",
	}
}

// GetBody performs one GET and returns the raw body of a 2xx response
func (c *Client) GetBody(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, c.Errorf(domain.ErrProviderUnavailable, "build request: %v", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, c.Errorf(domain.ErrProviderUnavailable, "request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.Errorf(domain.ErrProviderUnavailable, "status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.Errorf(domain.ErrProviderUnavailable, "read body: %v", err)
	}
	return body, nil
}

// GetJSON performs one GET and decodes the body into an untyped document
func (c *Client) GetJSON(ctx context.Context, url string) (any, error) {
	body, err := c.GetBody(ctx, url)
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, c.Errorf(domain.ErrInvalidQuote, "malformed JSON: %v", err)
	}
	return doc, nil
}

// Float reads a numeric value at a JSONPath. Numbers encoded as strings are accepted.
func (c *Client) Float(doc any, path string) (float64, error) {
	val, err := c.lookup(doc, path)
	if err != nil {
		return 0, err
	}

	var f float64
	switch v := val.(type) {
	case float64:
		f = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, c.Errorf(domain.ErrInvalidQuote, "%s is not numeric: %q", path, v)
		}
		f = parsed
	default:
		return 0, c.Errorf(domain.ErrInvalidQuote, "%s is not numeric: %v", path, val)
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, c.Errorf(domain.ErrInvalidQuote, "%s is not finite", path)
	}
	return f, nil
}

// Bool reads a boolean at a JSONPath
func (c *Client) Bool(doc any, path string) (bool, error) {
	val, err := c.lookup(doc, path)
	if err != nil {
		return false, err
	}
	b, ok := val.(bool)
	if !ok {
		return false, c.Errorf(domain.ErrInvalidQuote, "%s is not a boolean: %v", path, val)
	}
	return b, nil
}

// Positive reads a value with Float and rejects zero and negative results
func (c *Client) Positive(doc any, path string) (float64, error) {
	f, err := c.Float(doc, path)
	if err != nil {
		return 0, err
	}
	if !domain.ValidPrice(f) {
		return 0, c.Errorf(domain.ErrInvalidQuote, "%s must be positive, got %v", path, f)
	}
	return f, nil
}

func (c *Client) lookup(doc any, path string) (any, error) {
	val, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, c.Errorf(domain.ErrInvalidQuote, "missing %s: %v", path, err)
	}
	// jsonpath may answer with a one-element list; keep the first answer
	if list, ok := val.([]any); ok {
		if len(list) == 0 {
			return nil, c.Errorf(domain.ErrInvalidQuote, "missing %s", path)
		}
		val = list[0]
	}
	if val == nil {
		return nil, c.Errorf(domain.ErrInvalidQuote, "%s is null", path)
	}
	return val, nil
}

// Errorf builds a *domain.ProviderError of the given kind for this client's provider
func (c *Client) Errorf(kind error, format string, args ...any) error {
	return domain.NewProviderError(c.Provider, kind, format, args...)
}

// URL joins a base URL and a path segment
func URL(base string, format string, args ...any) string {
	return strings.TrimRight(base, "/") + fmt.Sprintf(format, args...)
}
