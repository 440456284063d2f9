package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/pricefolio/pricefolio/internal/account"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/pricefolio/pricefolio/internal/modules/analytics"
	"github.com/pricefolio/pricefolio/internal/modules/currency"
	"github.com/pricefolio/pricefolio/internal/modules/portfolio"
	"github.com/pricefolio/pricefolio/internal/modules/pricing"
	testingutil "github.com/pricefolio/pricefolio/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(lots ...domain.PurchaseLot) chi.Router {
	log := zerolog.Nop()
	repo := testingutil.NewMockLotRepository(lots...)
	resolver := pricing.NewResolver(
		[]domain.PriceProvider{testingutil.NewStubPriceProvider("stub", 20, nil)},
		currency.NewDetector(), 0, log)
	normalizer := currency.NewNormalizer(
		[]domain.RateProvider{testingutil.NewStubRateProvider("stub", map[string]float64{"USD:EUR": 1})},
		nil, currency.Options{Reporting: domain.CurrencyEUR}, log)
	svc := portfolio.NewService(repo, resolver, normalizer, analytics.NewCoordinator(0, log),
		testingutil.NewFakeClock(testingutil.FixtureTime), log)

	router := chi.NewRouter()
	NewHandler(svc, log).RegisterRoutes(router)
	return router
}

func do(router chi.Router, method, path, owner string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if owner != "" {
		req.Header.Set(account.Header, owner)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRoutesRequireAccount(t *testing.T) {
	w := do(setupRouter(), http.MethodGet, "/portfolio/lots", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLotLifecycle(t *testing.T) {
	router := setupRouter()

	w := do(router, http.MethodPost, "/portfolio/lots", "alice", LotRequest{
		Ticker: "aapl", TradeDate: "2024-05-01", Shares: 2, PricePerShare: 10, Fees: 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data domain.PurchaseLot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, "AAPL", created.Data.Ticker)
	assert.NotEmpty(t, created.Data.ID)

	w = do(router, http.MethodPut, "/portfolio/lots/"+created.Data.ID, "alice", LotRequest{
		TradeDate: "2024-05-02T10:00:00Z", Shares: 3, PricePerShare: 10,
	})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodPut, "/portfolio/lots/"+created.Data.ID, "bob", LotRequest{
		TradeDate: "2024-05-02", Shares: 3, PricePerShare: 10,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/portfolio/lots", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = do(router, http.MethodDelete, "/portfolio/lots/"+created.Data.ID, "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(router, http.MethodDelete, "/portfolio/lots/"+created.Data.ID, "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateLot_Validation(t *testing.T) {
	router := setupRouter()

	w := do(router, http.MethodPost, "/portfolio/lots", "alice", LotRequest{Ticker: "AAPL", Shares: 1, PricePerShare: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing trade date")

	w = do(router, http.MethodPost, "/portfolio/lots", "alice", LotRequest{
		Ticker: "AAPL", TradeDate: "2024-05-01", Shares: -1, PricePerShare: 1,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSummary(t *testing.T) {
	router := setupRouter(testingutil.NewLotFixtures("alice")...)

	w := do(router, http.MethodGet, "/portfolio/summaries/AAPL", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data domain.PortfolioSummary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, 16.0, *response.Data.WeightedAveragePrice)
	assert.Equal(t, 400.0, *response.Data.TotalValue)
	assert.Equal(t, 77.0, *response.Data.TotalProfit)

	w = do(router, http.MethodGet, "/portfolio/summaries/MSFT", "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(router, http.MethodGet, "/portfolio/summaries/AAPL", "bob", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSummariesAndPerformance(t *testing.T) {
	router := setupRouter(testingutil.NewLotFixtures("alice")...)

	w := do(router, http.MethodGet, "/portfolio/summaries", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"ticker":"AAPL"`)

	w = do(router, http.MethodGet, "/portfolio/performance", "alice", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "€400.00")
}
