// Package handlers provides HTTP handlers for currency operations.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/pricefolio/pricefolio/internal/modules/currency"
	"github.com/rs/zerolog"
)

// Handler handles currency HTTP requests
type Handler struct {
	normalizer *currency.Normalizer
	detector   *currency.Detector
	log        zerolog.Logger
}

// NewHandler creates a new currency handler
func NewHandler(normalizer *currency.Normalizer, detector *currency.Detector, log zerolog.Logger) *Handler {
	return &Handler{
		normalizer: normalizer,
		detector:   detector,
		log:        log.With().Str("handler", "currency").Logger(),
	}
}

// ConvertRequest represents a request to convert an amount
type ConvertRequest struct {
	FromCurrency string  `json:"from_currency"`
	ToCurrency   string  `json:"to_currency"`
	Amount       float64 `json:"amount"`
}

// HandleDetect handles GET /api/currency/detect/{ticker}
func (h *Handler) HandleDetect(w http.ResponseWriter, r *http.Request) {
	ticker, err := domain.NormalizeTicker(chi.URLParam(r, "ticker"))
	if err != nil {
		http.Error(w, "ticker is required", http.StatusBadRequest)
		return
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"ticker":   ticker,
		"currency": h.detector.Detect(ticker),
	})
}

// HandleGetRate handles GET /api/currency/rates/{from}/{to}
func (h *Handler) HandleGetRate(w http.ResponseWriter, r *http.Request) {
	from := domain.NormalizeCurrency(chi.URLParam(r, "from"))
	to := domain.NormalizeCurrency(chi.URLParam(r, "to"))
	if from == "" || to == "" {
		http.Error(w, "from and to currencies are required", http.StatusBadRequest)
		return
	}

	rate, err := h.normalizer.Rate(r.Context(), from, to)
	if err != nil {
		if errors.Is(err, domain.ErrRateUnavailable) {
			h.log.Warn().Err(err).Str("from", string(from)).Str("to", string(to)).Msg("No rate available")
			http.Error(w, "no exchange rate available", http.StatusServiceUnavailable)
			return
		}
		h.log.Error().Err(err).Msg("Failed to resolve rate")
		http.Error(w, "failed to resolve rate", http.StatusInternalServerError)
		return
	}

	h.writeData(w, http.StatusOK, rate)
}

// HandleConvert handles POST /api/currency/convert
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Error().Err(err).Msg("Failed to decode request body")
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.FromCurrency == "" {
		http.Error(w, "from_currency is required", http.StatusBadRequest)
		return
	}
	if req.ToCurrency == "" {
		req.ToCurrency = string(h.normalizer.ReportingCurrency())
	}
	if !domain.ValidPrice(req.Amount) {
		http.Error(w, "amount must be greater than 0", http.StatusBadRequest)
		return
	}

	conv := h.normalizer.ConvertBetween(r.Context(), req.Amount,
		domain.Currency(req.FromCurrency), domain.Currency(req.ToCurrency))

	data := map[string]interface{}{"conversion": conv}
	if conv.Unconverted {
		data["note"] = "Exchange rate unavailable, amount returned unconverted"
	}
	h.writeData(w, http.StatusOK, data)
}

// HandleGetAvailableCurrencies handles GET /api/currency/available-currencies
func (h *Handler) HandleGetAvailableCurrencies(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"currencies": h.detector.Currencies(),
		"reporting":  h.normalizer.ReportingCurrency(),
	})
}

// HandleGetFallbackChain handles GET /api/currency/rates/fallback-chain
func (h *Handler) HandleGetFallbackChain(w http.ResponseWriter, r *http.Request) {
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"chain": h.normalizer.FallbackChain(),
	})
}

// HandleSyncRates handles POST /api/currency/rates/sync
func (h *Handler) HandleSyncRates(w http.ResponseWriter, r *http.Request) {
	results, err := h.normalizer.Sync(r.Context(), h.detector.Currencies())
	if err != nil {
		h.log.Error().Err(err).Msg("Rate sync failed")
		h.writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":   err.Error(),
			"results": results,
		})
		return
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"message": "Exchange rates synced",
		"results": results,
	})
}

// HandleGetCache handles GET /api/currency/cache
func (h *Handler) HandleGetCache(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	entries := h.normalizer.Cache().Entries()

	type entry struct {
		domain.ExchangeRate
		Expired bool `json:"expired"`
	}
	out := make([]entry, 0, len(entries))
	for _, e := range entries {
		out = append(out, entry{ExchangeRate: e, Expired: e.Expired(now)})
	}

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"entries": out,
		"count":   len(out),
	})
}

// HandleClearCache handles DELETE /api/currency/cache
func (h *Handler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	h.normalizer.Cache().Clear()
	h.log.Info().Msg("Rate cache cleared")

	h.writeData(w, http.StatusOK, map[string]interface{}{
		"message": "Rate cache cleared",
	})
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
