package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/pricefolio/pricefolio/internal/database"
	"github.com/pricefolio/pricefolio/internal/domain"
	testingutil "github.com/pricefolio/pricefolio/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *LotRepository {
	t.Helper()
	db := testingutil.NewTestDB(t, database.NamePortfolio)
	return NewLotRepository(db.Conn(), zerolog.Nop())
}

func TestLotRepository_CreateAndList(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	later := testingutil.NewLot("alice", "AAPL", 10, 22, 2, testingutil.FixtureTime.AddDate(0, -1, 0))
	earlier := testingutil.NewLot("alice", "AAPL", 10, 10, 1, testingutil.FixtureTime.AddDate(0, -2, 0))
	other := testingutil.NewLot("alice", "KBC.BR", 3, 60, 0, testingutil.FixtureTime)
	foreign := testingutil.NewLot("bob", "AAPL", 1, 15, 0, testingutil.FixtureTime)

	for _, lot := range []domain.PurchaseLot{later, earlier, other, foreign} {
		require.NoError(t, repo.Create(ctx, lot))
	}

	lots, err := repo.ListByTicker(ctx, "alice", "AAPL")
	require.NoError(t, err)
	require.Len(t, lots, 2)
	assert.Equal(t, earlier, lots[0])
	assert.Equal(t, later, lots[1])

	all, err := repo.ListByOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	tickers, err := repo.Tickers(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "KBC.BR"}, tickers)

	none, err := repo.ListByTicker(ctx, "carol", "AAPL")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestLotRepository_GetByIDScopedToOwner(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	lot := testingutil.NewLot("alice", "AAPL", 1, 10, 0, testingutil.FixtureTime)
	require.NoError(t, repo.Create(ctx, lot))

	got, err := repo.GetByID(ctx, "alice", lot.ID)
	require.NoError(t, err)
	assert.Equal(t, lot, *got)

	_, err = repo.GetByID(ctx, "bob", lot.ID)
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
}

func TestLotRepository_Update(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	lot := testingutil.NewLot("alice", "AAPL", 1, 10, 0, testingutil.FixtureTime)
	require.NoError(t, repo.Create(ctx, lot))

	updatedAt := testingutil.FixtureTime.Add(time.Hour)
	update := domain.LotUpdate{Shares: 5, PricePerShare: 12.5, Fees: 1.5, TradeDate: testingutil.FixtureTime.AddDate(0, 0, -7)}

	updated, err := repo.Update(ctx, "alice", lot.ID, update, updatedAt)
	require.NoError(t, err)
	assert.Equal(t, 5.0, updated.Shares)

	stored, err := repo.GetByID(ctx, "alice", lot.ID)
	require.NoError(t, err)
	assert.Equal(t, *updated, *stored)
	assert.Equal(t, lot.CreatedAt, stored.CreatedAt)
	assert.Equal(t, updatedAt, stored.UpdatedAt)

	_, err = repo.Update(ctx, "bob", lot.ID, update, updatedAt)
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
}

func TestLotRepository_Delete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	lot := testingutil.NewLot("alice", "AAPL", 1, 10, 0, testingutil.FixtureTime)
	require.NoError(t, repo.Create(ctx, lot))

	assert.ErrorIs(t, repo.Delete(ctx, "bob", lot.ID), domain.ErrLotNotFound)
	require.NoError(t, repo.Delete(ctx, "alice", lot.ID))
	assert.ErrorIs(t, repo.Delete(ctx, "alice", lot.ID), domain.ErrLotNotFound)
}

func TestLotRepository_StatsAndOwners(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, lot := range []domain.PurchaseLot{
		testingutil.NewLot("alice", "AAPL", 10, 10, 1, testingutil.FixtureTime),
		testingutil.NewLot("alice", "AAPL", 10, 22, 2, testingutil.FixtureTime.AddDate(0, 0, 1)),
		testingutil.NewLot("bob", "AAPL", 5, 30, 0, testingutil.FixtureTime),
		testingutil.NewLot("bob", "MSFT", 2, 300, 4, testingutil.FixtureTime),
	} {
		require.NoError(t, repo.Create(ctx, lot))
	}

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, domain.TickerStats{
		Ticker: "AAPL", OwnerCount: 2, PurchaseCount: 3, TotalShares: 25, AveragePrice: 18.8, TotalFees: 3,
	}, stats[0])
	assert.Equal(t, "MSFT", stats[1].Ticker)
	assert.Equal(t, 300.0, stats[1].AveragePrice)

	owners, err := repo.OwnerCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, owners)
}
