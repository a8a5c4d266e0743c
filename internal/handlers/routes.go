package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes returns the API router. authLimiter guards the credential routes
// and may be nil.
func (h *Handlers) Routes(authLimiter *RateLimiter) http.Handler {
	r := chi.NewRouter()
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Route("/auth", func(r chi.Router) {
		r.With(authLimiter.Middleware).Post("/register", h.Register)
		r.With(authLimiter.Middleware).Post("/login", h.Login)
		r.Post("/google", h.Google)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.AuthMiddleware)

		r.Get("/user/me", h.GetProfile)
		r.Put("/user/me", h.UpdateProfile)

		r.Route("/transactions", func(r chi.Router) {
			r.Post("/", h.CreateTransaction)
			r.Get("/", h.ListTransactions)
			r.Get("/overview", h.Overview)
			r.Get("/reports", h.Reports)
			r.Get("/{id}", h.GetTransaction)
			r.Put("/{id}", h.UpdateTransaction)
			r.Delete("/{id}", h.DeleteTransaction)
		})
	})

	return r
}
