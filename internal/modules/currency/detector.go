// Package currency infers trading currencies from tickers and converts amounts
// into the reporting currency using cached, multi-source exchange rates.
package currency

import (
	"sort"
	"strings"

	"github.com/pricefolio/pricefolio/internal/domain"
)

// exchangeSuffixes maps a ticker's exchange suffix to its trading currency
var exchangeSuffixes = map[string]domain.Currency{
	".AS": domain.CurrencyEUR, // Amsterdam
	".BR": domain.CurrencyEUR, // Brussels
	".DE": domain.CurrencyEUR, // Xetra
	".PA": domain.CurrencyEUR, // Paris
	".MC": domain.CurrencyEUR, // Madrid
	".IE": domain.CurrencyEUR, // Dublin
	".CO": domain.CurrencyEUR, // Copenhagen, kept as EUR for compatibility with stored data
	".VI": domain.CurrencyEUR, // Vienna
	".L":  domain.CurrencyGBP, // London
	".SW": domain.CurrencyCHF, // SIX Swiss
	".HK": domain.CurrencyHKD, // Hong Kong
}

// tickerOverrides are listings that trade in a currency other than their exchange's
var tickerOverrides = map[string]domain.Currency{
	"BIRG.L": domain.CurrencyEUR,
	"SMT.L":  domain.CurrencyEUR,
	"FCIT.L": domain.CurrencyEUR,
}

// Detector infers a ticker's trading currency from lookup tables.
// Unknown and unsuffixed tickers are USD.
type Detector struct {
	suffixes  map[string]domain.Currency
	overrides map[string]domain.Currency
	fallback  domain.Currency
}

// NewDetector creates a detector with the built-in exchange tables
func NewDetector() *Detector {
	return &Detector{
		suffixes:  exchangeSuffixes,
		overrides: tickerOverrides,
		fallback:  domain.CurrencyUSD,
	}
}

// Detect implements domain.CurrencyDetector
func (d *Detector) Detect(ticker string) domain.Currency {
	t := strings.ToUpper(strings.TrimSpace(ticker))

	if c, ok := d.overrides[t]; ok {
		return c
	}
	if i := strings.LastIndex(t, "."); i > 0 {
		if c, ok := d.suffixes[t[i:]]; ok {
			return c
		}
	}
	return d.fallback
}

// Currencies returns every currency the detector can produce, sorted
func (d *Detector) Currencies() []domain.Currency {
	seen := map[domain.Currency]bool{d.fallback: true}
	for _, c := range d.suffixes {
		seen[c] = true
	}
	for _, c := range d.overrides {
		seen[c] = true
	}

	out := make([]domain.Currency, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
