// internal/app/features/sessions/routes.go
package sessions

import (
	"github.com/go-chi/chi/v5"
	"github.com/inkwell-live/inkwell/internal/app/system/auth"
)

// Routes returns the session API router with bearer-token auth applied
// to every endpoint.
func Routes(h *Handler, mw *auth.Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(mw.RequireAuth)

	r.Post("/", h.HandleCreate)
	r.Get("/", h.HandleList)
	r.Post("/{id}/start", h.HandleStart)
	r.Post("/{id}/end", h.HandleEnd)

	return r
}
