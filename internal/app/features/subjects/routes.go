package subjects

import "github.com/go-chi/chi/v5"

// Routes mounts the catalog page. Mounted at /subjects.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}

// SubjectRoutes mounts the per-subject pages. Mounted at /subject.
func SubjectRoutes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/{subjectId}", h.ServeDetail)
	r.Get("/{subjectId}/live", h.ServeLive)
	r.Get("/{subjectId}/{type}", h.ServeResources)
	return r
}
