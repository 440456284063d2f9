package domain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		wantErr  bool
	}{
		{name: "lower case", input: "aapl", expected: "AAPL"},
		{name: "padded", input: "  kbc.br ", expected: "KBC.BR"},
		{name: "already normalized", input: "MSFT", expected: "MSFT"},
		{name: "empty", input: "", wantErr: true},
		{name: "whitespace only", input: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeTicker(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrEmptyTicker)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValidPrice(t *testing.T) {
	assert.True(t, ValidPrice(0.01))
	assert.True(t, ValidPrice(150))
	assert.False(t, ValidPrice(0))
	assert.False(t, ValidPrice(-1))
	assert.False(t, ValidPrice(math.NaN()))
	assert.False(t, ValidPrice(math.Inf(1)))
}

func TestExchangeRate_Expired(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rate := ExchangeRate{From: CurrencyUSD, To: CurrencyEUR, Rate: 0.9, ExpiresAt: now.Add(time.Hour)}

	assert.False(t, rate.Expired(now.Add(59*time.Minute)))
	assert.True(t, rate.Expired(now.Add(time.Hour)))
	assert.True(t, rate.Expired(now.Add(61*time.Minute)))
	assert.Equal(t, "USD:EUR", rate.Pair())
}

func TestPurchaseLot_Validate(t *testing.T) {
	valid := PurchaseLot{
		Owner:         "acct-1",
		Ticker:        "AAPL",
		Shares:        10,
		PricePerShare: 150,
		Fees:          1.5,
		TradeDate:     time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(l *PurchaseLot)
	}{
		{"missing owner", func(l *PurchaseLot) { l.Owner = "" }},
		{"missing ticker", func(l *PurchaseLot) { l.Ticker = " " }},
		{"zero shares", func(l *PurchaseLot) { l.Shares = 0 }},
		{"negative price", func(l *PurchaseLot) { l.PricePerShare = -3 }},
		{"negative fees", func(l *PurchaseLot) { l.Fees = -0.01 }},
		{"NaN fees", func(l *PurchaseLot) { l.Fees = math.NaN() }},
		{"zero trade date", func(l *PurchaseLot) { l.TradeDate = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lot := valid
			tt.mutate(&lot)
			assert.ErrorIs(t, lot.Validate(), ErrInvalidLot)
		})
	}
}

func TestLotUpdate_Apply(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	lot := PurchaseLot{ID: "l1", Owner: "a", Ticker: "AAPL", Shares: 1, PricePerShare: 10, CreatedAt: created}
	now := created.Add(48 * time.Hour)

	update := LotUpdate{Shares: 5, PricePerShare: 20, Fees: 2, TradeDate: created.Add(24 * time.Hour)}
	got := update.Apply(lot, now)

	assert.Equal(t, 5.0, got.Shares)
	assert.Equal(t, 20.0, got.PricePerShare)
	assert.Equal(t, 2.0, got.Fees)
	assert.Equal(t, update.TradeDate, got.TradeDate)
	assert.Equal(t, now, got.UpdatedAt)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, 100.0, got.Cost())
}

func TestProviderError_Unwrap(t *testing.T) {
	err := NewProviderError("yahoo", ErrInvalidQuote, "price %v", 0)

	assert.True(t, errors.Is(err, ErrInvalidQuote))
	assert.False(t, errors.Is(err, ErrProviderUnavailable))
	assert.Contains(t, err.Error(), "yahoo")

	var perr *ProviderError
	require.True(t, errors.As(error(err), &perr))
	assert.Equal(t, "yahoo", perr.Provider)
}

func TestLiveSource(t *testing.T) {
	assert.Equal(t, "live:yahoo", LiveSource("yahoo"))
	assert.True(t, IsLiveSource("live:finnhub"))
	assert.False(t, IsLiveSource(SourceSynthetic))
}
