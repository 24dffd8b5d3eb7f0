package triage

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers triage session routes
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/health", h.Health)

	r.Route("/triage-session", func(r chi.Router) {
		r.Post("/", h.StartSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Use(h.sessionIDMiddleware)
			r.Get("/", h.GetSession)
			r.Post("/answer", h.SubmitAnswer)
			r.Post("/back", h.PreviousQuestion)
			r.Post("/reset", h.ResetSession)
			r.Post("/cancel", h.CancelSession)
			r.Post("/diagnose", h.Diagnose)
			r.Get("/report", h.GetReport)
		})
	})
}
