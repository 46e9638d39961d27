package home

import (
	"net/http"

	"github.com/dalemusser/studysphere/internal/app/system/catalog"
	"github.com/dalemusser/studysphere/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	Catalog *catalog.Catalog
	Log     *zap.Logger
}

func NewHandler(cat *catalog.Catalog, logger *zap.Logger) *Handler {
	return &Handler{
		Catalog: cat,
		Log:     logger,
	}
}

type featuredSubject struct {
	Name string
	Slug string
}

type homeData struct {
	viewdata.BaseVM
	Subjects []featuredSubject
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := homeData{
		BaseVM: viewdata.NewBaseVM(r, "Welcome", "/"),
	}
	for _, s := range h.Catalog.Subjects() {
		data.Subjects = append(data.Subjects, featuredSubject{Name: s.Name, Slug: s.Slug()})
	}

	templates.Render(w, r, "home", data)
}
