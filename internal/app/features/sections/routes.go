package sections

import (
	"net/http"

	"github.com/dalemusser/studysphere/internal/app/system/admingate"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the section pages. Mounted at /sections. Writes go through
// gate.RequireAdmin; forbidden renders the access-denied page.
func Routes(h *Handler, gate *admingate.Gate, forbidden http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{subject}/{section}", h.ServeSection)
	r.Get("/{subject}/{section}/live", h.ServeLive)

	r.Group(func(pr chi.Router) {
		pr.Use(gate.RequireAdmin(forbidden))
		pr.Post("/{subject}/{section}", h.HandleLink)
		pr.Post("/{subject}/{section}/files", h.HandleFiles)
	})
	return r
}
