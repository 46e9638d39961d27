// internal/app/features/tips/handler.go
package tips

import (
	"html/template"
	"net/http"

	uierrors "github.com/dalemusser/studysphere/internal/app/features/errors"
	"github.com/dalemusser/studysphere/internal/app/system/markdown"
	"github.com/dalemusser/studysphere/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type tipCard struct {
	Title string
	Body  template.HTML
}

type pageData struct {
	viewdata.BaseVM
	Tips []tipCard
}

type Handler struct {
	Tips     []Tip
	Markdown *markdown.Renderer
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(md *markdown.Renderer, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Tips: Default(), Markdown: md, ErrLog: errLog, Log: logger}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /study-tips                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeTips(w http.ResponseWriter, r *http.Request) {
	cards := make([]tipCard, 0, len(h.Tips))
	for _, t := range h.Tips {
		body, err := h.Markdown.Render(t.Body)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "render study tip failed", err, "Could not load the study tips.", "/")
			return
		}
		cards = append(cards, tipCard{Title: t.Title, Body: body})
	}

	templates.Render(w, r, "study_tips", pageData{
		BaseVM: viewdata.NewBaseVM(r, "Study Tips", "/"),
		Tips:   cards,
	})
}
