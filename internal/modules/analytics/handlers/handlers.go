// Package handlers provides HTTP handlers for cross-account stock analytics.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pricefolio/pricefolio/internal/modules/analytics"
	"github.com/rs/zerolog"
)

// Handler serves stock analytics
type Handler struct {
	service *analytics.Service
	log     zerolog.Logger
}

// NewHandler creates a new analytics handler
func NewHandler(service *analytics.Service, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		log:     log.With().Str("handler", "analytics").Logger(),
	}
}

// RegisterRoutes registers analytics routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/analytics", func(r chi.Router) {
		r.Get("/stocks", h.HandleGetStockAnalytics)
		r.Get("/popular-tickers", h.HandleGetPopularTickers)
	})
}

// HandleGetStockAnalytics handles GET /api/analytics/stocks
func (h *Handler) HandleGetStockAnalytics(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.StockAnalytics(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to compute stock analytics")
		http.Error(w, "failed to compute stock analytics", http.StatusInternalServerError)
		return
	}
	h.writeData(w, report)
}

// HandleGetPopularTickers handles GET /api/analytics/popular-tickers?limit=N
func (h *Handler) HandleGetPopularTickers(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	tickers, err := h.service.PopularTickers(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load popular tickers")
		http.Error(w, "failed to load popular tickers", http.StatusInternalServerError)
		return
	}
	h.writeData(w, map[string]interface{}{"tickers": tickers})
}

func (h *Handler) writeData(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
