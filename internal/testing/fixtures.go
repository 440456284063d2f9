package testing

import (
	"fmt"
	"time"

	"github.com/pricefolio/pricefolio/internal/domain"
)

// FixtureTime is the reference instant used by fixtures
var FixtureTime = time.Date(2024, 6, 3, 9, 30, 0, 0, time.UTC)

// NewLot builds a valid lot for owner/ticker. ID is derived from the arguments.
func NewLot(owner, ticker string, shares, price, fees float64, tradeDate time.Time) domain.PurchaseLot {
	return domain.PurchaseLot{
		ID:            fmt.Sprintf("%s-%s-%v-%d", owner, ticker, shares, tradeDate.Unix()),
		Owner:         owner,
		Ticker:        ticker,
		Shares:        shares,
		PricePerShare: price,
		Fees:          fees,
		TradeDate:     tradeDate,
		CreatedAt:     FixtureTime,
		UpdatedAt:     FixtureTime,
	}
}

// NewLotFixtures returns the two-lot AAPL position used across tests:
// 10 @ 10 and 10 @ 22, weighted average 16, total cost 320, fees 3.
func NewLotFixtures(owner string) []domain.PurchaseLot {
	return []domain.PurchaseLot{
		NewLot(owner, "AAPL", 10, 10, 1, FixtureTime.AddDate(0, -2, 0)),
		NewLot(owner, "AAPL", 10, 22, 2, FixtureTime.AddDate(0, -1, 0)),
	}
}
