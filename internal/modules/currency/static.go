package currency

import "github.com/pricefolio/pricefolio/internal/domain"

// staticRates are approximate last-resort rates used only when every live
// source and the persisted last-known rate are unavailable.
var staticRates = map[string]float64{
	"USD:EUR": 0.85,
	"EUR:USD": 1.18,
	"GBP:EUR": 1.17,
	"EUR:GBP": 0.85,
	"CHF:EUR": 0.92,
	"EUR:CHF": 1.09,
	"HKD:EUR": 0.11,
	"EUR:HKD": 9.09,
}

// StaticRate returns the built-in approximate rate for a pair: the direct
// entry, else the inverse of the reverse entry, else a cross rate through EUR.
func StaticRate(from, to domain.Currency) (float64, bool) {
	if from == to {
		return 1.0, true
	}
	if rate, ok := directStatic(from, to); ok {
		return rate, true
	}
	if from == domain.CurrencyEUR || to == domain.CurrencyEUR {
		return 0, false
	}

	toEUR, ok := directStatic(from, domain.CurrencyEUR)
	if !ok {
		return 0, false
	}
	fromEUR, ok := directStatic(domain.CurrencyEUR, to)
	if !ok {
		return 0, false
	}
	return toEUR * fromEUR, true
}

func directStatic(from, to domain.Currency) (float64, bool) {
	if rate, ok := staticRates[domain.PairKey(from, to)]; ok {
		return rate, true
	}
	if rate, ok := staticRates[domain.PairKey(to, from)]; ok && rate > 0 {
		return 1 / rate, true
	}
	return 0, false
}
