// internal/app/features/directory/routes.go
package directory

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the member directory endpoints.
// Mounted under /members; the auth middleware runs upstream.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeBrowse)
	r.Get("/me", h.ServeMe)
	r.Put("/me", h.ServeUpdateMe)
	r.Get("/{id}", h.ServeMember)
	return r
}
