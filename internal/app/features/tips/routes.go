// internal/app/features/tips/routes.go
package tips

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeTips)
	return r
}
