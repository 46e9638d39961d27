// Package uploads validates and writes new resources and section files.
//
// Every write attempt happens once. A batch of files is processed in order,
// one at a time; a failed file is reported and the rest of the batch still
// runs, with nothing rolled back.
package uploads

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dalemusser/studysphere/internal/app/system/apperr"
	"github.com/dalemusser/studysphere/internal/app/system/auth"
	"github.com/dalemusser/studysphere/internal/app/system/blobstore"
	"github.com/dalemusser/studysphere/internal/app/system/catalog"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ResourceWriter persists resource records.
type ResourceWriter interface {
	Create(ctx context.Context, r models.Resource) (models.Resource, error)
}

// ItemWriter persists section items.
type ItemWriter interface {
	Create(ctx context.Context, it models.SectionItem) (models.SectionItem, error)
}

// Pipeline holds the write-side collaborators.
type Pipeline struct {
	Resources ResourceWriter
	Items     ItemWriter
	Blobs     blobstore.Store
	Catalog   *catalog.Catalog
	Log       *zap.Logger
	Now       func() time.Time
	// NewTag returns the per-file token that keeps object keys unique.
	NewTag    func() string
}

// New wires a Pipeline with the real clock.
func New(resources ResourceWriter, items ItemWriter, blobs blobstore.Store, cat *catalog.Catalog, logger *zap.Logger) *Pipeline {
	return &Pipeline{
		Resources: resources,
		Items:     items,
		Blobs:     blobs,
		Catalog:   cat,
		Log:       logger,
		Now:       func() time.Time { return time.Now().UTC() },
		NewTag:    func() string { return uuid.NewString()[:8] },
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Resource records                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// Input is the admin upload form.
type Input struct {
	Subject string
	Type    string
	Title   string
	Link    string
}

// SubmitResource validates in, canonicalizes it and writes one record.
// Missing subject, type or link yields *apperr.ValidationError with nothing
// written. A failed insert yields *apperr.WriteError.
func (p *Pipeline) SubmitResource(ctx context.Context, in Input, principal *auth.SessionUser) (models.Resource, error) {
	subject := strings.TrimSpace(in.Subject)
	typ := strings.TrimSpace(in.Type)
	link := strings.TrimSpace(in.Link)

	switch {
	case subject == "":
		return models.Resource{}, apperr.Validation("subject", "is required")
	case typ == "":
		return models.Resource{}, apperr.Validation("type", "is required")
	case link == "":
		return models.Resource{}, apperr.Validation("link", "is required")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = models.DefaultResourceTitle
	}

	rec := models.Resource{
		Subject:    p.Catalog.Canonical(subject),
		Type:       typ,
		Title:      title,
		Link:       link,
		Timestamp:  p.now(),
		UploadedBy: uploader(principal),
	}

	created, err := p.Resources.Create(ctx, rec)
	if err != nil {
		p.log().Error("resource insert failed",
			zap.String("subject", rec.Subject), zap.String("type", rec.Type), zap.Error(err))
		return models.Resource{}, &apperr.WriteError{Op: "insert resource", Err: err}
	}

	p.log().Info("resource uploaded",
		zap.String("id", created.ID.Hex()),
		zap.String("subject", created.Subject),
		zap.String("type", created.Type),
		zap.String("uploaded_by", created.UploadedBy))
	return created, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Section files                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// File is one selected upload. Open is called once, when the file's turn in
// the batch comes.
type File struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// FileFailure records why one file of a batch was not stored.
type FileFailure struct {
	Name string
	Err  error
}

// BatchResult lists what a batch stored and what it did not.
type BatchResult struct {
	Stored   []models.SectionItem
	Failures []FileFailure
}

// OK reports whether every file was stored.
func (b BatchResult) OK() bool { return len(b.Failures) == 0 }

// SubmitFiles stores each file at
// uploads/{subject}/{section}/{unixMillis}_{tag}_{filename} and then
// records a section item pointing at the stored blob. Files run
// sequentially.
func (p *Pipeline) SubmitFiles(ctx context.Context, subject, section string, files []File, principal *auth.SessionUser) (BatchResult, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return BatchResult{}, apperr.Validation("subject", "is required")
	}
	if !models.IsFileSection(section) {
		return BatchResult{}, apperr.Validation("section", fmt.Sprintf("%q does not accept files", section))
	}
	if len(files) == 0 {
		return BatchResult{}, apperr.Validation("files", "select at least one file")
	}
	subject = p.Catalog.Canonical(subject)

	var res BatchResult
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			res.Failures = append(res.Failures, FileFailure{Name: f.Name, Err: err})
			continue
		}
		it, err := p.storeFile(ctx, subject, section, f)
		if err != nil {
			p.log().Error("file upload failed",
				zap.String("subject", subject), zap.String("section", section),
				zap.String("file", f.Name), zap.Error(err))
			res.Failures = append(res.Failures, FileFailure{Name: f.Name, Err: err})
			continue
		}
		res.Stored = append(res.Stored, it)
	}

	p.log().Info("section files uploaded",
		zap.String("subject", subject), zap.String("section", section),
		zap.Int("stored", len(res.Stored)), zap.Int("failed", len(res.Failures)),
		zap.String("uploaded_by", uploader(principal)))
	return res, nil
}

func (p *Pipeline) storeFile(ctx context.Context, subject, section string, f File) (models.SectionItem, error) {
	body, err := f.Open()
	if err != nil {
		return models.SectionItem{}, &apperr.WriteError{Op: "open upload", Err: err}
	}
	defer body.Close()

	key := blobstore.ObjectKey(subject, section, p.now(), p.tag(), f.Name)
	if err := p.Blobs.Put(ctx, key, body, f.ContentType); err != nil {
		return models.SectionItem{}, &apperr.WriteError{Op: "store file", Err: err}
	}

	it, err := p.Items.Create(ctx, models.SectionItem{
		Subject: subject,
		Section: section,
		Name:    f.Name,
		URL:     p.Blobs.URL(key),
	})
	if err != nil {
		return models.SectionItem{}, &apperr.WriteError{Op: "insert section item", Err: err}
	}
	return it, nil
}

// AddLink records a bare link in subject's links section.
func (p *Pipeline) AddLink(ctx context.Context, subject, link string, principal *auth.SessionUser) (models.SectionItem, error) {
	subject = strings.TrimSpace(subject)
	link = strings.TrimSpace(link)
	switch {
	case subject == "":
		return models.SectionItem{}, apperr.Validation("subject", "is required")
	case link == "":
		return models.SectionItem{}, apperr.Validation("url", "is required")
	case !urlutil.IsValidAbsHTTPURL(link):
		return models.SectionItem{}, apperr.Validation("url", "must be an http(s) URL")
	}

	it, err := p.Items.Create(ctx, models.SectionItem{
		Subject: p.Catalog.Canonical(subject),
		Section: models.SectionLinks,
		URL:     link,
	})
	if err != nil {
		p.log().Error("link insert failed", zap.String("subject", subject), zap.Error(err))
		return models.SectionItem{}, &apperr.WriteError{Op: "insert link", Err: err}
	}
	p.log().Info("link added",
		zap.String("subject", it.Subject), zap.String("uploaded_by", uploader(principal)))
	return it, nil
}

func uploader(p *auth.SessionUser) string {
	if p == nil || strings.TrimSpace(p.Email) == "" {
		return models.UnknownUploader
	}
	return p.Email
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now().UTC()
}

func (p *Pipeline) tag() string {
	if p.NewTag != nil {
		return p.NewTag()
	}
	return uuid.NewString()[:8]
}

func (p *Pipeline) log() *zap.Logger {
	if p.Log != nil {
		return p.Log
	}
	return zap.NewNop()
}
