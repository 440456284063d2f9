package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func hasTwoDecimals(p float64) bool {
	return math.Abs(p*100-math.Round(p*100)) < 1e-6
}

func TestSyntheticPrice_Deterministic(t *testing.T) {
	for _, ticker := range []string{"AAPL", "KBC.BR", "UNKNOWN1", "SOME.ETF", "ZZZ"} {
		first := SyntheticPrice(ticker)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, SyntheticPrice(ticker), ticker)
		}
	}
}

func TestSyntheticPrice_KnownRanges(t *testing.T) {
	for ticker, r := range knownRanges {
		p := SyntheticPrice(ticker)
		assert.GreaterOrEqual(t, p, r.low, ticker)
		assert.LessOrEqual(t, p, r.high, ticker)
		assert.True(t, hasTwoDecimals(p), ticker)
	}
}

func TestSyntheticPrice_Heuristics(t *testing.T) {
	tests := []struct {
		ticker string
		low    float64
		high   float64
	}{
		{"UCB.BR", 20 * 0.95, 100 * 1.05},
		{"PHIA.AS", 20 * 0.95, 100 * 1.05},
		{"MY-ETF", 50 * 0.95, 500 * 1.05},
		{"IBM", 50 * 0.95, 300 * 1.05},
		{"ORCL", 50 * 0.95, 300 * 1.05},
	}

	for _, tt := range tests {
		t.Run(tt.ticker, func(t *testing.T) {
			p := SyntheticPrice(tt.ticker)
			assert.GreaterOrEqual(t, p, tt.low)
			assert.LessOrEqual(t, p, tt.high)
			assert.True(t, hasTwoDecimals(p))
		})
	}
}

func TestSyntheticSeed(t *testing.T) {
	// md5("AAPL") = 8b10e4ae...
	assert.Equal(t, int64(0x8b10e4ae), syntheticSeed("AAPL"))
	assert.NotEqual(t, syntheticSeed("AAPL"), syntheticSeed("MSFT"))
}

func TestHeuristicRange(t *testing.T) {
	assert.Equal(t, priceRange{20, 100}, heuristicRange("X.BR"))
	assert.Equal(t, priceRange{50, 500}, heuristicRange("SPY"))
	assert.Equal(t, priceRange{50, 500}, heuristicRange("WORLDETF"))
	assert.Equal(t, priceRange{50, 300}, heuristicRange("IBM"))
}
