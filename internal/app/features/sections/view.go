package sections

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/studysphere/internal/app/features/errors"
	"github.com/dalemusser/studysphere/internal/app/system/normalize"
	"github.com/dalemusser/studysphere/internal/app/system/sse"
	"github.com/dalemusser/studysphere/internal/app/system/timeouts"
	"github.com/dalemusser/studysphere/internal/app/system/videoembed"
	"github.com/dalemusser/studysphere/internal/app/system/viewdata"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// itemRow is one entry as the page (and the live stream) shows it.
type itemRow struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Embed string `json:"embed,omitempty"`
}

type sectionData struct {
	viewdata.BaseVM
	Subject     string
	Slug        string
	Section     string
	Heading     string
	IsFiles     bool
	Items       []itemRow
	Failed      bool
	Status      string
	StatusError bool
}

var sectionHeadings = map[string]string{
	models.SectionNotes: "Notes",
	models.SectionLab:   "Lab",
	models.SectionLinks: "Links",
}

func rowsFor(items []models.SectionItem) []itemRow {
	out := make([]itemRow, 0, len(items))
	for _, it := range items {
		row := itemRow{Label: it.Label(), URL: it.URL}
		if it.Section == models.SectionLinks {
			row.Embed = videoembed.EmbedURL(it.URL)
		}
		out = append(out, row)
	}
	return out
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sections/{subject}/{section}                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeSection(w http.ResponseWriter, r *http.Request) {
	subject, section, ok := h.params(r)
	if !ok {
		uierrors.RenderNotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	items, err := h.Items.List(ctx, subject, section)
	failed := false
	if err != nil {
		h.Log.Error("list section items failed",
			zap.String("subject", subject), zap.String("section", section), zap.Error(err))
		items, failed = nil, true
	}

	slug := normalize.Slug(subject)
	data := sectionData{
		BaseVM:  viewdata.NewBaseVM(r, subject+" · "+sectionHeadings[section], "/subject/"+slug),
		Subject: subject,
		Slug:    slug,
		Section: section,
		Heading: sectionHeadings[section],
		IsFiles: models.IsFileSection(section),
		Items:   rowsFor(items),
		Failed:  failed,
	}
	data.Status, data.StatusError = statusMessage(query.Get(r, "status"))
	templates.Render(w, r, "section_page", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /sections/{subject}/{section}/live                                      |
*─────────────────────────────────────────────────────────────────────────────*/

type liveItems struct {
	Items []itemRow `json:"items"`
}

func (h *Handler) ServeLive(w http.ResponseWriter, r *http.Request) {
	subject, section, ok := h.params(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	sub := h.watch(r.Context(), subject, section)
	sse.Stream(w, r, sub, func(items []models.SectionItem) any {
		return liveItems{Items: rowsFor(items)}
	}, h.Log)
}
