package admin

import (
	"net/http"

	"github.com/dalemusser/studysphere/internal/app/system/admingate"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the upload form. Every route requires the admin.
func Routes(h *Handler, gate *admingate.Gate, forbidden http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(gate.RequireAdmin(forbidden))
	r.Get("/", h.ServeForm)
	r.Post("/", h.HandleSubmit)
	r.Get("/types", h.ServeTypes)
	return r
}
