package subjects

import (
	"context"
	"html/template"
	"net/http"
	"net/url"

	"github.com/dalemusser/studysphere/internal/app/store/queries/subjectresources"
	"github.com/dalemusser/studysphere/internal/app/system/normalize"
	"github.com/dalemusser/studysphere/internal/app/system/sse"
	"github.com/dalemusser/studysphere/internal/app/system/timeouts"
	"github.com/dalemusser/studysphere/internal/app/system/viewdata"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
)

// tabState is one tab on the subject page. HasResources drives the marker
// next to the tab name and is refreshed by the live stream.
type tabState struct {
	Name         string `json:"name"`
	Key          string `json:"key"`
	HasResources bool   `json:"hasResources"`
}

type detailData struct {
	viewdata.BaseVM
	Subject     string
	Slug        string
	Description template.HTML
	Tabs        []tabState
	Failed      bool
}

// subjectParam reads {subjectId} and maps it to the stored subject name.
func (h *Handler) subjectParam(r *http.Request) string {
	raw := chi.URLParam(r, "subjectId")
	if s, err := url.PathUnescape(raw); err == nil {
		raw = s
	}
	return h.Catalog.Canonical(raw)
}

// tabsWith marks which of subject's tabs have at least one resource.
func (h *Handler) tabsWith(subject string, items []models.Resource) []tabState {
	present := subjectresources.TypesPresent(items)
	names := h.Catalog.TabsFor(subject)
	out := make([]tabState, 0, len(names))
	for _, n := range names {
		key := normalize.Type(n)
		out = append(out, tabState{Name: n, Key: key, HasResources: present[key]})
	}
	return out
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /subject/{subjectId}                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDetail(w http.ResponseWriter, r *http.Request) {
	subject := h.subjectParam(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	res := h.Query.Fetch(ctx, subject, "")

	data := detailData{
		BaseVM:  viewdata.NewBaseVM(r, subject, "/subjects"),
		Subject: subject,
		Slug:    normalize.Slug(subject),
		Tabs:    h.tabsWith(subject, res.Items),
		Failed:  res.Failed,
	}
	if entry, ok := h.Catalog.Get(subject); ok {
		data.Description = h.blurb(entry.Description)
	}
	templates.Render(w, r, "subject_detail", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /subject/{subjectId}/live[?type=]                                       |
*─────────────────────────────────────────────────────────────────────────────*/

type liveTabs struct {
	Tabs []tabState `json:"tabs"`
}

type liveItems struct {
	Items []liveResource `json:"items"`
}

type liveResource struct {
	Title string `json:"title"`
	Link  string `json:"link"`
	Type  string `json:"type"`
}

// ServeLive streams snapshots for the subject. Without ?type= each event
// carries the tab markers; with it, the resource list for that type.
func (h *Handler) ServeLive(w http.ResponseWriter, r *http.Request) {
	subject := h.subjectParam(r)
	typ := query.Get(r, "type")

	sub := h.Query.Watch(r.Context(), subject, typ)
	if typ == "" {
		sse.Stream(w, r, sub, func(items []models.Resource) any {
			return liveTabs{Tabs: h.tabsWith(subject, items)}
		}, h.Log)
		return
	}
	sse.Stream(w, r, sub, encodeItems, h.Log)
}

func encodeItems(items []models.Resource) any {
	out := liveItems{Items: make([]liveResource, 0, len(items))}
	for _, it := range items {
		out.Items = append(out.Items, liveResource{Title: it.DisplayTitle(), Link: it.Link, Type: it.Type})
	}
	return out
}
