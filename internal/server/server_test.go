package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pricefolio/pricefolio/internal/account"
	"github.com/pricefolio/pricefolio/internal/config"
	"github.com/pricefolio/pricefolio/internal/di"
	"github.com/pricefolio/pricefolio/internal/scheduler"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		DataDir:           t.TempDir(),
		ReportingCurrency: "EUR",
		Port:              8001,
		DevMode:           true,
		UseSQLite:         true,
		Providers: &config.ProviderConfig{
			PriceProviders:  []string{"yahoo"},
			RateProviders:   []string{"exchangerate-api"},
			ProviderTimeout: time.Second,
			BatchSpacing:    0,
			RateCacheTTL:    time.Hour,
		},
		Scheduler: &config.SchedulerConfig{
			RateSyncSchedule: "@every 30m",
			CleanupSchedule:  "@daily",
		},
	}

	sched := scheduler.New(zerolog.Nop())
	container, jobs, err := di.Wire(context.Background(), cfg, sched, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(container.Close)

	s := New(Config{
		Log:       zerolog.Nop(),
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
		Scheduler: sched,
		Jobs:      []scheduler.Job{jobs.Cleanup, jobs.WALCheckpoints, jobs.Databases},
	})
	s.systemHandlers.cpuInterval = 0
	return s
}

func do(t *testing.T, s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "ok", body.Checks["portfolio"])
	assert.Equal(t, "ok", body.Checks["client_data"])
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/health", "", map[string]string{"X-Request-Id": "req-42"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCurrencyRoutesMounted(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/currency/detect/ASML.AS", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"currency":"EUR"`)
}

func TestPortfolioRoutesRequireAccount(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/portfolio/lots", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, s, http.MethodGet, "/api/portfolio/lots", "", map[string]string{account.Header: "alice"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":0`)
}

func TestPortfolioCreateAndList(t *testing.T) {
	s := newTestServer(t)
	headers := map[string]string{account.Header: "alice"}

	w := do(t, s, http.MethodPost, "/api/portfolio/lots",
		`{"ticker":"aapl","trade_date":"2024-04-03","shares":10,"price_per_share":10,"fees":1}`, headers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, s, http.MethodGet, "/api/portfolio/lots", "", headers)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)

	w = do(t, s, http.MethodGet, "/api/portfolio/lots", "", map[string]string{account.Header: "bob"})
	assert.Contains(t, w.Body.String(), `"count":0`)
}

func TestSystemStatus(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/system/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body SystemStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Databases, 2)
	for _, db := range body.Databases {
		assert.NotEmpty(t, db.Path, db.Name)
	}
	assert.Len(t, body.Jobs, 4)
	assert.NotEmpty(t, body.GoVersion)
	assert.Positive(t, body.Goroutines)
}

func TestTriggerJob(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodPost, "/api/system/jobs/check_databases", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "success")

	w = do(t, s, http.MethodGet, "/api/system/jobs", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"runs":1`)

	w = do(t, s, http.MethodPost, "/api/system/jobs/rebalance", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	w := do(t, s, http.MethodOptions, "/api/portfolio/lots", "", map[string]string{
		"Origin":                         "http://localhost:3000",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": account.Header,
	})
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
