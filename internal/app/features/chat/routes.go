// internal/app/features/chat/routes.go
package chat

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter for the chat endpoints. Mounted under
// /chat; the auth middleware runs upstream.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeChannels)
	r.Post("/{key}/messages", h.ServePost)
	r.Get("/{key}/messages", h.ServeRecent)
	r.Post("/{key}/read", h.ServeRead)
	r.Get("/{key}/stream", h.ServeStream)
	return r
}
