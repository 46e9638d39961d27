package subjects

import (
	"html/template"

	uierrors "github.com/dalemusser/studysphere/internal/app/features/errors"
	"github.com/dalemusser/studysphere/internal/app/store/queries/subjectresources"
	"github.com/dalemusser/studysphere/internal/app/system/catalog"
	"github.com/dalemusser/studysphere/internal/app/system/markdown"
	"go.uber.org/zap"
)

// Handler serves the subject catalog, the per-subject tab page and the
// resource lists behind each tab.
type Handler struct {
	Query    *subjectresources.Querier
	Catalog  *catalog.Catalog
	Markdown *markdown.Renderer
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(q *subjectresources.Querier, cat *catalog.Catalog, md *markdown.Renderer, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Query:    q,
		Catalog:  cat,
		Markdown: md,
		ErrLog:   errLog,
		Log:      logger,
	}
}

// blurb renders a catalog description, falling back to the escaped text
// if markdown conversion fails.
func (h *Handler) blurb(src string) template.HTML {
	out, err := h.Markdown.Inline(src)
	if err != nil {
		h.Log.Warn("render subject description", zap.Error(err))
		return template.HTML(template.HTMLEscapeString(src))
	}
	return out
}
