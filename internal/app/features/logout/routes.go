// internal/app/features/logout/routes.go
package logout

import (
	"github.com/dalemusser/studysphere/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		// Only signed-in users have a session to clear.
		pr.Use(sm.RequireSignedIn)
		pr.Post("/", h.ServeLogout)
	})

	return r
}
