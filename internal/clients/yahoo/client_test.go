package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetYahooSymbol(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"AAPL.US", "AAPL"},
		{"aapl", "AAPL"},
		{"BEL", "BEL.BR"},
		{"COLR", "COLR.BR"},
		{"BIRG", "BIRG.L"},
		{"KBC.BR", "KBC.BR"},
		{"BIRG.L", "BIRG.L"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetYahooSymbol(tt.input))
		})
	}
}

func TestFetchQuote_Success(t *testing.T) {
	var requested string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		_, _ = w.Write([]byte(`{"chart":{"result":[{"meta":{"currency":"USD","regularMarketPrice":189.84}}],"error":null}}`))
	}))
	defer server.Close()

	client := NewClient(zerolog.Nop()).WithBaseURL(server.URL)

	quote, err := client.FetchQuote(context.Background(), "AAPL.US")
	require.NoError(t, err)

	assert.Equal(t, "/AAPL", requested)
	assert.Equal(t, "AAPL.US", quote.Ticker)
	assert.Equal(t, 189.84, quote.Price)
	assert.Equal(t, "live:yahoo", quote.Source)
	assert.False(t, quote.Timestamp.IsZero())
}

func TestFetchQuote_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{"not found", http.StatusNotFound, `{}`, domain.ErrProviderUnavailable},
		{"null result", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Not Found"}}}`, domain.ErrInvalidQuote},
		{"missing price", http.StatusOK, `{"chart":{"result":[{"meta":{}}]}}`, domain.ErrInvalidQuote},
		{"zero price", http.StatusOK, `{"chart":{"result":[{"meta":{"regularMarketPrice":0}}]}}`, domain.ErrInvalidQuote},
		{"html", http.StatusOK, `<html></html>`, domain.ErrInvalidQuote},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewClient(zerolog.Nop()).WithBaseURL(server.URL).FetchQuote(context.Background(), "AAPL")
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}
