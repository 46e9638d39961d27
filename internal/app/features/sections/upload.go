package sections

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	uierrors "github.com/dalemusser/studysphere/internal/app/features/errors"
	"github.com/dalemusser/studysphere/internal/app/system/apperr"
	"github.com/dalemusser/studysphere/internal/app/system/auth"
	"github.com/dalemusser/studysphere/internal/app/system/limits"
	"github.com/dalemusser/studysphere/internal/app/system/normalize"
	"github.com/dalemusser/studysphere/internal/app/system/timeouts"
	"github.com/dalemusser/studysphere/internal/app/system/uploads"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"go.uber.org/zap"
)

// Upload outcomes carried on the redirect back to the section page.
const (
	statusOK      = "ok"
	statusPartial = "partial"
	statusFailed  = "failed"
	statusInvalid = "invalid"
)

func statusMessage(code string) (msg string, isErr bool) {
	switch code {
	case statusOK:
		return "✅ Upload successful!", false
	case statusPartial:
		return "Some files were not uploaded. Try those again.", true
	case statusFailed:
		return "❌ Upload failed. Try again.", true
	case statusInvalid:
		return "⚠️ Please fill in all fields!", true
	}
	return "", false
}

func (h *Handler) redirectBack(w http.ResponseWriter, r *http.Request, subject, section, status string) {
	target := "/sections/" + url.PathEscape(normalize.Slug(subject)) + "/" + section + "?status=" + status
	http.Redirect(w, r, target, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sections/{subject}/{section}/files – admin                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleFiles(w http.ResponseWriter, r *http.Request) {
	subject, section, ok := h.params(r)
	if !ok || !models.IsFileSection(section) {
		uierrors.RenderNotFound(w, r)
		return
	}
	if err := r.ParseMultipartForm(limits.MaxUploadMemory); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse multipart form failed", err, "The upload could not be read.", "")
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	var files []uploads.File
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			files = append(files, fileFromHeader(fh))
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	user, _ := auth.CurrentUser(r)
	res, err := h.Uploads.SubmitFiles(ctx, subject, section, files, user)
	switch {
	case apperr.IsValidation(err):
		h.redirectBack(w, r, subject, section, statusInvalid)
	case err != nil:
		h.ErrLog.LogServerError(w, r, "section upload failed", err, "The upload failed.", "")
	case res.OK():
		h.redirectBack(w, r, subject, section, statusOK)
	case len(res.Stored) > 0:
		h.redirectBack(w, r, subject, section, statusPartial)
	default:
		h.redirectBack(w, r, subject, section, statusFailed)
	}
}

func fileFromHeader(fh *multipart.FileHeader) uploads.File {
	return uploads.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /sections/{subject}/links – admin                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLink is routed as POST /{subject}/{section}; only the links section
// accepts it.
func (h *Handler) HandleLink(w http.ResponseWriter, r *http.Request) {
	subject, section, _ := h.params(r)
	if section != models.SectionLinks {
		uierrors.RenderNotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, _ := auth.CurrentUser(r)
	_, err := h.Uploads.AddLink(ctx, subject, r.PostForm.Get("url"), user)
	switch {
	case apperr.IsValidation(err):
		h.Log.Info("link rejected", zap.Error(err))
		h.redirectBack(w, r, subject, section, statusInvalid)
	case err != nil:
		h.redirectBack(w, r, subject, section, statusFailed)
	default:
		h.redirectBack(w, r, subject, section, statusOK)
	}
}
