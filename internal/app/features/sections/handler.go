package sections

import (
	"context"
	"net/http"
	"net/url"
	"time"

	uierrors "github.com/dalemusser/studysphere/internal/app/features/errors"
	"github.com/dalemusser/studysphere/internal/app/system/catalog"
	"github.com/dalemusser/studysphere/internal/app/system/livefeed"
	"github.com/dalemusser/studysphere/internal/app/system/uploads"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ItemSource is the section-item store surface the pages read from.
type ItemSource interface {
	List(ctx context.Context, subject, section string) ([]models.SectionItem, error)
	WatchSource(ctx context.Context, subject, section string) (livefeed.ChangeSource, error)
}

// Handler serves the notes/lab/links pages of a subject and the admin
// uploads into them.
type Handler struct {
	Items        ItemSource
	Uploads      *uploads.Pipeline
	Catalog      *catalog.Catalog
	PollInterval time.Duration
	ErrLog       *uierrors.ErrorLogger
	Log          *zap.Logger
}

func NewHandler(items ItemSource, pipeline *uploads.Pipeline, cat *catalog.Catalog, pollInterval time.Duration, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Items:        items,
		Uploads:      pipeline,
		Catalog:      cat,
		PollInterval: pollInterval,
		ErrLog:       errLog,
		Log:          logger,
	}
}

// params reads {subject} and {section}. ok is false for an unknown section.
func (h *Handler) params(r *http.Request) (subject, section string, ok bool) {
	raw := chi.URLParam(r, "subject")
	if s, err := url.PathUnescape(raw); err == nil {
		raw = s
	}
	subject = h.Catalog.Canonical(raw)
	section = chi.URLParam(r, "section")
	return subject, section, models.IsValidSection(section)
}

// watch starts a live read of one section.
func (h *Handler) watch(ctx context.Context, subject, section string) *livefeed.Subscription[models.SectionItem] {
	cfg := livefeed.Config{
		PollInterval: h.PollInterval,
		Logger:       h.Log.With(zap.String("subject", subject), zap.String("section", section)),
		Name:         "section-items",
	}
	load := func(ctx context.Context) ([]models.SectionItem, error) {
		return h.Items.List(ctx, subject, section)
	}
	open := func(ctx context.Context) (livefeed.ChangeSource, error) {
		return h.Items.WatchSource(ctx, subject, section)
	}
	return livefeed.Start(ctx, cfg, load, open)
}
