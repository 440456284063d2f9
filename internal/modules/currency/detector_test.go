package currency

import (
	"testing"

	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		ticker   string
		expected domain.Currency
	}{
		{"AAPL", domain.CurrencyUSD},
		{"KBC.BR", domain.CurrencyEUR},
		{"ASML.AS", domain.CurrencyEUR},
		{"SAP.DE", domain.CurrencyEUR},
		{"LVMH.PA", domain.CurrencyEUR},
		{"ITX.MC", domain.CurrencyEUR},
		{"RYA.IE", domain.CurrencyEUR},
		{"NOVO-B.CO", domain.CurrencyEUR},
		{"OMV.VI", domain.CurrencyEUR},
		{"VOD.L", domain.CurrencyGBP},
		{"NESN.SW", domain.CurrencyCHF},
		{"0700.HK", domain.CurrencyHKD},
		{"BIRG.L", domain.CurrencyEUR},
		{"SMT.L", domain.CurrencyEUR},
		{"FCIT.L", domain.CurrencyEUR},
		{"birg.l", domain.CurrencyEUR},
		{"BRK.B", domain.CurrencyUSD},
		{"7203.T", domain.CurrencyUSD},
	}

	d := NewDetector()
	for _, tt := range tests {
		t.Run(tt.ticker, func(t *testing.T) {
			assert.Equal(t, tt.expected, d.Detect(tt.ticker))
		})
	}
}

func TestCurrencies(t *testing.T) {
	assert.Equal(t,
		[]domain.Currency{domain.CurrencyCHF, domain.CurrencyEUR, domain.CurrencyGBP, domain.CurrencyHKD, domain.CurrencyUSD},
		NewDetector().Currencies())
}
