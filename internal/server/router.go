package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"noorai/internal/auth"
)

// NewRouter assembles middleware and routes. The auth middleware only
// annotates the context; each handler decides whether identity is
// required. The Stripe webhook stays outside the auth group since it is
// authenticated by signature, not by user token.
func NewRouter(h *Handler, verifier *auth.Verifier) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.CleanPath)

	r.Get("/healthz", h.Healthz)
	r.Post("/api/stripe/webhook", h.StripeWebhook)

	r.Group(func(r chi.Router) {
		r.Use(verifier.Middleware)

		r.Post("/api/generate", h.Generate)
		r.Get("/api/generations", h.ListGenerations)
		r.Get("/api/generations/{id}", h.GetGeneration)
		r.Post("/api/billing/checkout", h.Checkout)
	})

	return r
}
