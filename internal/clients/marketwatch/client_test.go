package marketwatch

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

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name     string
		page     string
		expected float64
		wantErr  bool
	}{
		{name: "json-ld", page: `<script>{"@type":"Product","price": 92.15,"priceCurrency":"USD"}</script>`, expected: 92.15},
		{name: "quoted", page: `{"price":"101.40"}`, expected: 101.40},
		{name: "first match wins", page: `"price": 10.5 ... "price": 11.5`, expected: 10.5},
		{name: "absent", page: `<html>nothing here</html>`, wantErr: true},
		{name: "zero", page: `"price": 0`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, err := ExtractPrice([]byte(tt.page))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, price)
		})
	}
}

func TestFetchQuote(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`<html><script type="application/ld+json">{"price": 98.76}</script></html>`))
	}))
	defer server.Close()

	quote, err := NewClient(zerolog.Nop()).WithBaseURL(server.URL).FetchQuote(context.Background(), "NKE")
	require.NoError(t, err)
	assert.Equal(t, "/nke", path)
	assert.Equal(t, 98.76, quote.Price)
	assert.Equal(t, "live:marketwatch", quote.Source)
}

func TestFetchQuote_NoPrice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>captcha</html>`))
	}))
	defer server.Close()

	_, err := NewClient(zerolog.Nop()).WithBaseURL(server.URL).FetchQuote(context.Background(), "NKE")
	assert.ErrorIs(t, err, domain.ErrInvalidQuote)
}
