package handlers

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all currency routes
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/currency", func(r chi.Router) {
		r.Get("/detect/{ticker}", h.HandleDetect)
		r.Post("/convert", h.HandleConvert)
		r.Get("/available-currencies", h.HandleGetAvailableCurrencies)

		// Rates
		r.Get("/rates/fallback-chain", h.HandleGetFallbackChain)
		r.Post("/rates/sync", h.HandleSyncRates)
		r.Get("/rates/{from}/{to}", h.HandleGetRate)

		// Cache
		r.Get("/cache", h.HandleGetCache)
		r.Delete("/cache", h.HandleClearCache)
	})
}
