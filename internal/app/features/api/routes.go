// internal/app/features/api/routes.go
package api

import "github.com/go-chi/chi/v5"

// Routes returns the /api subrouter. Both endpoints are public reads; the
// user endpoint checks the session itself via auth.CurrentUser.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/resources", h.ServeResources)
	r.Get("/user", h.ServeUser)
	return r
}
