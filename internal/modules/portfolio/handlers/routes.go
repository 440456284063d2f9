package handlers

import (
	"github.com/go-chi/chi/v5"
	"github.com/pricefolio/pricefolio/internal/account"
)

// RegisterRoutes registers all portfolio routes. Every route requires the
// account header.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/portfolio", func(r chi.Router) {
		r.Use(account.Require)

		// Lots
		r.Get("/lots", h.HandleListLots)
		r.Post("/lots", h.HandleCreateLot)
		r.Put("/lots/{id}", h.HandleUpdateLot)
		r.Delete("/lots/{id}", h.HandleDeleteLot)

		// Valuation
		r.Get("/summaries", h.HandleGetSummaries)
		r.Get("/summaries/{ticker}", h.HandleGetSummary)
		r.Get("/performance", h.HandleGetPerformance)
	})
}
