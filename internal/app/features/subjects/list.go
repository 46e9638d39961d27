package subjects

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/studysphere/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

type subjectCard struct {
	Name        string
	Slug        string
	Description template.HTML
}

type listData struct {
	viewdata.BaseVM
	Subjects []subjectCard
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /subjects                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	data := listData{BaseVM: viewdata.NewBaseVM(r, "Subjects", "/")}
	for _, s := range h.Catalog.Subjects() {
		data.Subjects = append(data.Subjects, subjectCard{
			Name:        s.Name,
			Slug:        s.Slug(),
			Description: h.blurb(s.Description),
		})
	}
	templates.Render(w, r, "subjects_list", data)
}
