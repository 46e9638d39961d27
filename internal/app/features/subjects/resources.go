package subjects

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/dalemusser/studysphere/internal/app/system/normalize"
	"github.com/dalemusser/studysphere/internal/app/system/timeouts"
	"github.com/dalemusser/studysphere/internal/app/system/viewdata"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

type resourcesData struct {
	viewdata.BaseVM
	Subject   string
	Slug      string
	Type      string
	TypeLabel string
	Items     []models.Resource
	Failed    bool
	LiveURL   string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /subject/{subjectId}/{type}                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeResources(w http.ResponseWriter, r *http.Request) {
	subject := h.subjectParam(r)
	typ := chi.URLParam(r, "type")
	if s, err := url.PathUnescape(typ); err == nil {
		typ = s
	}
	typ = strings.TrimSpace(typ)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	res := h.Query.Fetch(ctx, subject, typ)

	slug := normalize.Slug(subject)
	data := resourcesData{
		BaseVM:    viewdata.NewBaseVM(r, subject+" · "+typ, "/subject/"+slug),
		Subject:   subject,
		Slug:      slug,
		Type:      typ,
		TypeLabel: strings.ToLower(typ),
		Items:     res.Items,
		Failed:    res.Failed,
		LiveURL:   "/subject/" + url.PathEscape(slug) + "/live?type=" + url.QueryEscape(typ),
	}
	templates.Render(w, r, "subject_resources", data)
}
