// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// Routes serves the sign-in form. Mounted at /admin-login.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Post("/", h.HandleLoginPost)
	return r
}
