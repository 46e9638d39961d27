// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/studysphere/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for every error page.
type pageData struct {
	viewdata.BaseVM
	Message string
}

// Handler renders the standalone error pages. No DB needed.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders the "access denied" page with a 403.
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "", "")
}

// NotFound renders the 404 page. Mounted as the router's NotFound handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	RenderNotFound(w, r)
}

// RenderNotFound shows the 404 page.
func RenderNotFound(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Page not found", "/"),
		Message: "The page you were looking for does not exist.",
	}
	w.WriteHeader(http.StatusNotFound)
	templates.Render(w, r, "error_not_found", data)
}

// RenderForbidden shows the access-denied page with msg. Empty msg and
// backURL fall back to defaults.
func RenderForbidden(w http.ResponseWriter, r *http.Request, msg, backURL string) {
	if msg == "" {
		msg = "Only the site admin can use this page."
	}
	vm := viewdata.NewBaseVM(r, "Access denied", "/")
	if backURL != "" {
		vm.BackURL = backURL
	}
	w.WriteHeader(http.StatusForbidden)
	templates.Render(w, r, "error_forbidden", pageData{BaseVM: vm, Message: msg})
}
