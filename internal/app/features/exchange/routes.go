// internal/app/features/exchange/routes.go
package exchange

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the exchange request endpoints.
// Mounted under /exchanges; the auth middleware runs upstream.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.ServeCreate)
	r.Get("/incoming", h.ServeIncoming)
	r.Get("/sent", h.ServeSent)
	r.Post("/{id}/accept", h.ServeAccept)
	r.Post("/{id}/reject", h.ServeReject)
	return r
}
