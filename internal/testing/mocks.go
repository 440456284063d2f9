package testing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pricefolio/pricefolio/internal/domain"
)

// FakeClock is a manually advanced domain.Clock
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock frozen at now
func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

// Now returns the current fake time
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MockLotRepository is an in-memory domain.LotRepository for testing
type MockLotRepository struct {
	mu   sync.RWMutex
	lots map[string]domain.PurchaseLot
	err  error
}

// NewMockLotRepository creates a repository seeded with lots
func NewMockLotRepository(lots ...domain.PurchaseLot) *MockLotRepository {
	m := &MockLotRepository{lots: make(map[string]domain.PurchaseLot)}
	for _, lot := range lots {
		m.lots[lot.ID] = lot
	}
	return m
}

// SetError makes every subsequent call fail with err
func (m *MockLotRepository) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockLotRepository) Create(_ context.Context, lot domain.PurchaseLot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.lots[lot.ID] = lot
	return nil
}

func (m *MockLotRepository) GetByID(_ context.Context, owner, id string) (*domain.PurchaseLot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	lot, ok := m.lots[id]
	if !ok || lot.Owner != owner {
		return nil, domain.ErrLotNotFound
	}
	return &lot, nil
}

func (m *MockLotRepository) ListByTicker(_ context.Context, owner, ticker string) ([]domain.PurchaseLot, error) {
	return m.filter(func(l domain.PurchaseLot) bool { return l.Owner == owner && l.Ticker == ticker })
}

func (m *MockLotRepository) ListByOwner(_ context.Context, owner string) ([]domain.PurchaseLot, error) {
	return m.filter(func(l domain.PurchaseLot) bool { return l.Owner == owner })
}

func (m *MockLotRepository) Tickers(ctx context.Context, owner string) ([]string, error) {
	lots, err := m.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var tickers []string
	for _, l := range lots {
		if !seen[l.Ticker] {
			seen[l.Ticker] = true
			tickers = append(tickers, l.Ticker)
		}
	}
	sort.Strings(tickers)
	return tickers, nil
}

func (m *MockLotRepository) Update(_ context.Context, owner, id string, update domain.LotUpdate, updatedAt time.Time) (*domain.PurchaseLot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	lot, ok := m.lots[id]
	if !ok || lot.Owner != owner {
		return nil, domain.ErrLotNotFound
	}
	lot = update.Apply(lot, updatedAt)
	m.lots[id] = lot
	return &lot, nil
}

func (m *MockLotRepository) Delete(_ context.Context, owner, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	lot, ok := m.lots[id]
	if !ok || lot.Owner != owner {
		return domain.ErrLotNotFound
	}
	delete(m.lots, id)
	return nil
}

func (m *MockLotRepository) Stats(_ context.Context) ([]domain.TickerStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	type acc struct {
		stats  domain.TickerStats
		cost   float64
		owners map[string]bool
	}
	byTicker := make(map[string]*acc)
	for _, l := range m.lots {
		a, ok := byTicker[l.Ticker]
		if !ok {
			a = &acc{stats: domain.TickerStats{Ticker: l.Ticker}, owners: make(map[string]bool)}
			byTicker[l.Ticker] = a
		}
		a.owners[l.Owner] = true
		a.stats.PurchaseCount++
		a.stats.TotalShares += l.Shares
		a.stats.TotalFees += l.Fees
		a.cost += l.Cost()
	}

	out := make([]domain.TickerStats, 0, len(byTicker))
	for _, a := range byTicker {
		a.stats.OwnerCount = len(a.owners)
		if a.stats.TotalShares > 0 {
			a.stats.AveragePrice = a.cost / a.stats.TotalShares
		}
		out = append(out, a.stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out, nil
}

func (m *MockLotRepository) OwnerCount(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return 0, m.err
	}
	owners := make(map[string]bool)
	for _, l := range m.lots {
		owners[l.Owner] = true
	}
	return len(owners), nil
}

func (m *MockLotRepository) filter(keep func(domain.PurchaseLot) bool) ([]domain.PurchaseLot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []domain.PurchaseLot
	for _, l := range m.lots {
		if keep(l) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TradeDate.Equal(out[j].TradeDate) {
			return out[i].TradeDate.Before(out[j].TradeDate)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// StubPriceProvider returns a fixed quote or error and counts calls
type StubPriceProvider struct {
	mu    sync.Mutex
	name  string
	price float64
	err   error
	calls int
	delay time.Duration
}

// NewStubPriceProvider creates a provider that returns price (or err when non-nil)
func NewStubPriceProvider(name string, price float64, err error) *StubPriceProvider {
	return &StubPriceProvider{name: name, price: price, err: err}
}

// WithDelay makes each call block for d or until the context ends
func (s *StubPriceProvider) WithDelay(d time.Duration) *StubPriceProvider {
	s.delay = d
	return s
}

func (s *StubPriceProvider) Name() string { return s.name }

func (s *StubPriceProvider) FetchQuote(ctx context.Context, ticker string) (domain.PriceQuote, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return domain.PriceQuote{}, domain.NewProviderError(s.name, domain.ErrProviderUnavailable, "%v", ctx.Err())
		}
	}
	if s.err != nil {
		return domain.PriceQuote{}, s.err
	}
	return domain.PriceQuote{Ticker: ticker, Price: s.price, Source: domain.LiveSource(s.name), Timestamp: FixtureTime}, nil
}

// Calls returns how many times FetchQuote ran
func (s *StubPriceProvider) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// StubRateProvider returns fixed rates per "FROM:TO" pair and counts calls
type StubRateProvider struct {
	mu    sync.Mutex
	name  string
	rates map[string]float64
	err   error
	calls int
}

// NewStubRateProvider creates a provider serving rates; unknown pairs fail
func NewStubRateProvider(name string, rates map[string]float64) *StubRateProvider {
	return &StubRateProvider{name: name, rates: rates}
}

// SetError makes every subsequent call fail with err
func (s *StubRateProvider) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *StubRateProvider) Name() string { return s.name }

func (s *StubRateProvider) FetchRate(_ context.Context, from, to domain.Currency) (domain.ExchangeRate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return domain.ExchangeRate{}, s.err
	}
	rate, ok := s.rates[domain.PairKey(from, to)]
	if !ok {
		return domain.ExchangeRate{}, domain.NewProviderError(s.name, domain.ErrInvalidQuote, "no rate for %s", domain.PairKey(from, to))
	}
	return domain.ExchangeRate{From: from, To: to, Rate: rate, Source: s.name}, nil
}

// Calls returns how many times FetchRate ran
func (s *StubRateProvider) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
