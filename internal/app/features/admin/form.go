package admin

import (
	"context"
	"net/http"

	"github.com/dalemusser/studysphere/internal/app/system/apperr"
	"github.com/dalemusser/studysphere/internal/app/system/auth"
	"github.com/dalemusser/studysphere/internal/app/system/timeouts"
	"github.com/dalemusser/studysphere/internal/app/system/uploads"
	"github.com/dalemusser/studysphere/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

type formData struct {
	viewdata.BaseVM
	Subjects []string
	Types    []string

	Subject string
	Type    string
	Title   string
	Link    string

	Status      string
	StatusError bool
}

func (h *Handler) newForm(r *http.Request) formData {
	data := formData{BaseVM: viewdata.NewBaseVM(r, "Upload resource", "/")}
	for _, s := range h.Catalog.Subjects() {
		data.Subjects = append(data.Subjects, s.Name)
	}
	return data
}

// typesFor is empty until a subject is picked; the type selector stays
// disabled until then.
func (h *Handler) typesFor(subject string) []string {
	if subject == "" {
		return nil
	}
	return h.Catalog.TabsFor(h.Catalog.Canonical(subject))
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeForm(w http.ResponseWriter, r *http.Request) {
	data := h.newForm(r)
	data.Subject = query.Get(r, "subject")
	data.Types = h.typesFor(data.Subject)
	templates.Render(w, r, "admin_upload", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin")
		return
	}

	in := uploads.Input{
		Subject: r.PostForm.Get("subject"),
		Type:    r.PostForm.Get("type"),
		Title:   r.PostForm.Get("title"),
		Link:    r.PostForm.Get("link"),
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, _ := auth.CurrentUser(r)
	_, err := h.Uploads.SubmitResource(ctx, in, user)

	data := h.newForm(r)
	switch {
	case err == nil:
		data.Status = MsgSuccess
	case apperr.IsValidation(err):
		// keep what was typed so the admin only fills the gap
		data.Subject, data.Type, data.Title, data.Link = in.Subject, in.Type, in.Title, in.Link
		data.Types = h.typesFor(in.Subject)
		data.Status, data.StatusError = MsgMissingFields, true
		w.WriteHeader(http.StatusUnprocessableEntity)
	default:
		h.Log.Warn("admin upload failed", zap.Error(err))
		data.Subject, data.Type, data.Title, data.Link = in.Subject, in.Type, in.Title, in.Link
		data.Types = h.typesFor(in.Subject)
		data.Status, data.StatusError = MsgFailed, true
		w.WriteHeader(http.StatusInternalServerError)
	}
	templates.Render(w, r, "admin_upload", data)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/types?subject=                                                   |
*─────────────────────────────────────────────────────────────────────────────*/

type typeOptions struct {
	Types []string
	Type  string
}

// ServeTypes returns the <option> list for the chosen subject.
func (h *Handler) ServeTypes(w http.ResponseWriter, r *http.Request) {
	templates.RenderSnippet(w, "admin_type_options", typeOptions{Types: h.typesFor(query.Get(r, "subject"))})
}
