package analytics

import (
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

// Risk levels derived from the diversification score
const (
	RiskLow    = "Low"
	RiskMedium = "Medium"
	RiskHigh   = "High"
)

// Totals are portfolio-wide figures in the reporting currency.
// Only summaries with a value in the reporting currency contribute.
type Totals struct {
	TotalInvested    float64 `json:"total_invested"`
	TotalCost        float64 `json:"total_cost"`
	CurrentValue     float64 `json:"total_current_value"`
	TotalProfit      float64 `json:"total_profit"`
	ProfitPercentage float64 `json:"total_profit_percentage"`
	TotalFees        float64 `json:"total_costs"`
	InvestmentCount  int     `json:"investment_count"`
	PricedCount      int     `json:"priced_count"`
}

// Performer names the ticker at one end of the profit ranking
type Performer struct {
	Ticker           string  `json:"ticker"`
	ProfitPercentage float64 `json:"profit_percentage"`
	TotalProfit      float64 `json:"total_profit"`
}

// Risk describes how concentrated the portfolio is
type Risk struct {
	DiversificationScore float64 `json:"diversification_score"`
	RiskLevel            string  `json:"risk_level"`
	Positions            int     `json:"number_of_positions"`
}

// Performance bundles totals, best and worst performers and risk
type Performance struct {
	Totals Totals     `json:"totals"`
	Best   *Performer `json:"best_performer"`
	Worst  *Performer `json:"worst_performer"`
	Risk   Risk       `json:"risk"`
}

// ComputePerformance summarizes a set of per-ticker summaries
func ComputePerformance(summaries []domain.PortfolioSummary) Performance {
	priced := pricedSummaries(summaries)

	return Performance{
		Totals: ComputeTotals(summaries),
		Best:   rank(priced, floats.MaxIdx),
		Worst:  rank(priced, floats.MinIdx),
		Risk:   ComputeRisk(summaries),
	}
}

// ComputeTotals sums invested amount, cost, value and profit
func ComputeTotals(summaries []domain.PortfolioSummary) Totals {
	totals := Totals{InvestmentCount: len(summaries)}

	var invested, fees, values []float64
	for _, s := range pricedSummaries(summaries) {
		invested = append(invested, s.TotalCost-s.TotalFees)
		fees = append(fees, s.TotalFees)
		values = append(values, *s.TotalValue)
	}
	totals.PricedCount = len(values)
	if totals.PricedCount == 0 {
		return totals
	}

	totalInvested := floats.Sum(invested)
	totalFees := floats.Sum(fees)
	totalCost := totalInvested + totalFees
	totalValue := floats.Sum(values)

	totals.TotalInvested = round2(totalInvested)
	totals.TotalFees = round2(totalFees)
	totals.TotalCost = round2(totalCost)
	totals.CurrentValue = round2(totalValue)
	totals.TotalProfit = round2(totalValue - totalCost)
	if totalCost > 0 {
		totals.ProfitPercentage = round2((totalValue - totalCost) / totalCost * 100)
	}
	return totals
}

// ComputeRisk scores diversification as 1 minus the largest position weight.
// A single position scores 0.
func ComputeRisk(summaries []domain.PortfolioSummary) Risk {
	risk := Risk{RiskLevel: RiskLow, Positions: len(summaries)}

	var weights []float64
	for _, s := range pricedSummaries(summaries) {
		weights = append(weights, *s.TotalValue)
	}
	total := floats.Sum(weights)
	if len(weights) == 0 || total <= 0 {
		return risk
	}

	if len(weights) > 1 {
		floats.Scale(1/total, weights)
		risk.DiversificationScore = round2(1 - floats.Max(weights))
	}

	switch {
	case risk.DiversificationScore > 0.7:
		risk.RiskLevel = RiskLow
	case risk.DiversificationScore > 0.4:
		risk.RiskLevel = RiskMedium
	default:
		risk.RiskLevel = RiskHigh
	}
	return risk
}

func rank(priced []domain.PortfolioSummary, pick func([]float64) int) *Performer {
	if len(priced) == 0 {
		return nil
	}
	pcts := make([]float64, len(priced))
	for i, s := range priced {
		pcts[i] = *s.ProfitPercentage
	}

	s := priced[pick(pcts)]
	return &Performer{
		Ticker:           s.Ticker,
		ProfitPercentage: round2(*s.ProfitPercentage),
		TotalProfit:      round2(*s.TotalProfit),
	}
}

// pricedSummaries keeps summaries that carry a full set of value fields
func pricedSummaries(summaries []domain.PortfolioSummary) []domain.PortfolioSummary {
	var out []domain.PortfolioSummary
	for _, s := range summaries {
		if s.Unconverted || s.TotalValue == nil || s.TotalProfit == nil || s.ProfitPercentage == nil {
			continue
		}
		out = append(out, s)
	}
	return out
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
