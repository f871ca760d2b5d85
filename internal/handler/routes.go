package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupAuthRoutes вешает /api/auth. authMiddleware защищает только /me.
func SetupAuthRoutes(r chi.Router, h *AuthenticationHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Get("/me", h.Me)
		})
		r.Group(func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/register", h.Register)
			r.Post("/refresh", h.Refresh)
			r.Post("/revoke", h.Revoke)
		})
	})
}
