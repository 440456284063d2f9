package portfolio

import (
	"fmt"
	"math"

	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/shopspring/decimal"
)

// Totals is the aggregation of one ticker's lots at a given price.
// Pointer fields are nil when the value is unavailable.
type Totals struct {
	Ticker               string
	TotalShares          float64
	CostBasis            float64
	TotalFees            float64
	TotalCost            float64
	PurchaseCount        int
	WeightedAveragePrice *float64
	Price                *float64
	TotalValue           *float64
	TotalProfit          *float64
	ProfitPercentage     *float64
}

// Aggregate folds lots into totals. Value and profit fields are only filled
// when price is present, positive and finite; every derived field that comes
// out non-finite is left nil rather than zeroed.
// Returns domain.ErrEmptyLotSet when lots is empty.
func Aggregate(ticker string, lots []domain.PurchaseLot, price *float64) (Totals, error) {
	if len(lots) == 0 {
		return Totals{}, fmt.Errorf("%w: %s", domain.ErrEmptyLotSet, ticker)
	}

	t := Totals{Ticker: ticker, PurchaseCount: len(lots)}
	for _, lot := range lots {
		t.TotalShares += lot.Shares
		t.CostBasis += lot.Shares * lot.PricePerShare
		t.TotalFees += lot.Fees
	}
	if !isFinite(t.TotalShares) || !isFinite(t.CostBasis) || !isFinite(t.TotalFees) {
		return Totals{}, fmt.Errorf("%w: totals for %s are not finite", domain.ErrInvalidLot, ticker)
	}
	t.TotalCost = t.CostBasis + t.TotalFees

	if t.TotalShares != 0 {
		t.WeightedAveragePrice = finite(t.CostBasis / t.TotalShares)
	}

	if price == nil || !domain.ValidPrice(*price) {
		return t, nil
	}

	p := *price
	t.Price = &p
	value := t.TotalShares * p
	profit := value - t.TotalCost
	percentage := 0.0
	if t.TotalCost > 0 {
		percentage = profit / t.TotalCost * 100
	}

	t.TotalValue = finite(value)
	t.TotalProfit = finite(profit)
	t.ProfitPercentage = finite(percentage)
	return t, nil
}

// Round rounds v half away from zero to two decimals
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round(*v)
	return &r
}

func finite(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
