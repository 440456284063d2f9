// Package handlers provides HTTP handlers for lot management and portfolio summaries.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pricefolio/pricefolio/internal/account"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/pricefolio/pricefolio/internal/modules/analytics"
	"github.com/pricefolio/pricefolio/internal/modules/portfolio"
	"github.com/rs/zerolog"
)

// Handler handles portfolio HTTP requests
type Handler struct {
	service *portfolio.Service
	log     zerolog.Logger
}

// NewHandler creates a new portfolio handler
func NewHandler(service *portfolio.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "portfolio").Logger(),
	}
}

// LotRequest is the body of lot create and update requests.
// TradeDate accepts "2006-01-02" or RFC 3339.
type LotRequest struct {
	Ticker        string  `json:"ticker"`
	TradeDate     string  `json:"trade_date"`
	Shares        float64 `json:"shares"`
	PricePerShare float64 `json:"price_per_share"`
	Fees          float64 `json:"fees"`
}

// HandleListLots handles GET /api/portfolio/lots
func (h *Handler) HandleListLots(w http.ResponseWriter, r *http.Request) {
	owner, _ := account.FromContext(r.Context())

	lots, err := h.service.ListLots(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if lots == nil {
		lots = []domain.PurchaseLot{}
	}
	h.writeData(w, http.StatusOK, map[string]interface{}{"lots": lots, "count": len(lots)})
}

// HandleCreateLot handles POST /api/portfolio/lots
func (h *Handler) HandleCreateLot(w http.ResponseWriter, r *http.Request) {
	owner, _ := account.FromContext(r.Context())

	req, tradeDate, ok := h.decodeLot(w, r)
	if !ok {
		return
	}

	lot, err := h.service.AddLot(r.Context(), owner, portfolio.LotInput{
		Ticker:        req.Ticker,
		TradeDate:     tradeDate,
		Shares:        req.Shares,
		PricePerShare: req.PricePerShare,
		Fees:          req.Fees,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeData(w, http.StatusCreated, lot)
}

// HandleUpdateLot handles PUT /api/portfolio/lots/{id}
func (h *Handler) HandleUpdateLot(w http.ResponseWriter, r *http.Request) {
	owner, _ := account.FromContext(r.Context())

	req, tradeDate, ok := h.decodeLot(w, r)
	if !ok {
		return
	}

	lot, err := h.service.UpdateLot(r.Context(), owner, chi.URLParam(r, "id"), domain.LotUpdate{
		TradeDate:     tradeDate,
		Shares:        req.Shares,
		PricePerShare: req.PricePerShare,
		Fees:          req.Fees,
	})
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, lot)
}

// HandleDeleteLot handles DELETE /api/portfolio/lots/{id}
func (h *Handler) HandleDeleteLot(w http.ResponseWriter, r *http.Request) {
	owner, _ := account.FromContext(r.Context())

	if err := h.service.DeleteLot(r.Context(), owner, chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, map[string]interface{}{"message": "Lot deleted"})
}

// HandleGetSummaries handles GET /api/portfolio/summaries
func (h *Handler) HandleGetSummaries(w http.ResponseWriter, r *http.Request) {
	owner, _ := account.FromContext(r.Context())

	batch, err := h.service.Summaries(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, batch)
}

// HandleGetSummary handles GET /api/portfolio/summaries/{ticker}
func (h *Handler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	owner, _ := account.FromContext(r.Context())

	summary, err := h.service.Summary(r.Context(), owner, chi.URLParam(r, "ticker"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	h.writeData(w, http.StatusOK, summary)
}

// HandleGetPerformance handles GET /api/portfolio/performance
func (h *Handler) HandleGetPerformance(w http.ResponseWriter, r *http.Request) {
	owner, _ := account.FromContext(r.Context())

	perf, batch, err := h.service.Performance(r.Context(), owner)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	code := string(h.service.ReportingCurrency())
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"performance": perf,
		"formatted": map[string]string{
			"total_invested":      analytics.FormatMoney(perf.Totals.TotalInvested, code),
			"total_cost":          analytics.FormatMoney(perf.Totals.TotalCost, code),
			"total_current_value": analytics.FormatMoney(perf.Totals.CurrentValue, code),
			"total_profit":        analytics.FormatMoney(perf.Totals.TotalProfit, code),
		},
		"errors": batch.Errors,
	})
}

func (h *Handler) decodeLot(w http.ResponseWriter, r *http.Request) (LotRequest, time.Time, bool) {
	var req LotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return req, time.Time{}, false
	}

	tradeDate, err := parseTradeDate(req.TradeDate)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return req, time.Time{}, false
	}
	return req, tradeDate, true
}

func parseTradeDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("trade_date is required")
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("trade_date must be YYYY-MM-DD or RFC 3339")
	}
	return t.UTC(), nil
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidLot), errors.Is(err, domain.ErrEmptyTicker):
		h.writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrLotNotFound):
		h.writeError(w, http.StatusNotFound, "lot not found")
	case errors.Is(err, domain.ErrEmptyLotSet):
		h.writeError(w, http.StatusNotFound, "no purchases recorded for this ticker")
	default:
		h.log.Error().Err(err).Msg("Portfolio request failed")
		h.writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
