package emergency

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers emergency detector routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Route("/emergency", func(r chi.Router) {
		r.Post("/check", h.Check)
		r.Post("/keywords", h.AddKeyword)
		r.Get("/categories", h.Categories)
	})
}
