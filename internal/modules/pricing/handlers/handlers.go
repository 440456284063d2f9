// Package handlers provides HTTP handlers for price lookups.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pricefolio/pricefolio/internal/domain"
	"github.com/pricefolio/pricefolio/internal/modules/currency"
	"github.com/pricefolio/pricefolio/internal/modules/pricing"
	"github.com/rs/zerolog"
)

// Handler serves resolved prices
type Handler struct {
	resolver   *pricing.Resolver
	normalizer *currency.Normalizer
	log        zerolog.Logger
}

// NewHandler creates a new pricing handler
func NewHandler(resolver *pricing.Resolver, normalizer *currency.Normalizer, log zerolog.Logger) *Handler {
	return &Handler{
		resolver:   resolver,
		normalizer: normalizer,
		log:        log.With().Str("handler", "pricing").Logger(),
	}
}

// RegisterRoutes registers pricing routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/prices", func(r chi.Router) {
		r.Get("/providers", h.HandleGetProviders)
		r.Get("/{ticker}", h.HandleGetPrice)
	})
}

// HandleGetPrice handles GET /api/prices/{ticker}
func (h *Handler) HandleGetPrice(w http.ResponseWriter, r *http.Request) {
	res, err := h.resolver.Resolve(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		if errors.Is(err, domain.ErrEmptyTicker) {
			http.Error(w, "ticker is required", http.StatusBadRequest)
			return
		}
		h.log.Error().Err(err).Msg("Failed to resolve price")
		http.Error(w, "failed to resolve price", http.StatusInternalServerError)
		return
	}

	data := map[string]interface{}{
		"quote":     res.Quote,
		"attempts":  res.Attempts,
		"synthetic": res.Synthetic(),
	}
	if h.normalizer != nil {
		data["converted"] = h.normalizer.Convert(r.Context(), res.Quote.Price, res.Quote.Currency)
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

// HandleGetProviders handles GET /api/prices/providers
func (h *Handler) HandleGetProviders(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"providers": h.resolver.Providers(),
		},
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
