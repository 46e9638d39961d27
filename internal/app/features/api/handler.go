// internal/app/features/api/handler.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dalemusser/studysphere/internal/app/store/queries/subjectresources"
	"github.com/dalemusser/studysphere/internal/app/system/admingate"
	"github.com/dalemusser/studysphere/internal/app/system/auth"
	"github.com/dalemusser/studysphere/internal/app/system/catalog"
	"github.com/dalemusser/studysphere/internal/app/system/timeouts"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

// Fetcher is the one-shot read. *subjectresources.Querier satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, subject, typ string) subjectresources.Result
}

// Handler serves the JSON endpoints.
type Handler struct {
	Query   Fetcher
	Catalog *catalog.Catalog
	Log     *zap.Logger
}

// NewHandler creates a new api handler.
func NewHandler(q Fetcher, cat *catalog.Catalog, logger *zap.Logger) *Handler {
	return &Handler{Query: q, Catalog: cat, Log: logger}
}

type resourcesResponse struct {
	Subject string            `json:"subject"`
	Type    string            `json:"type,omitempty"`
	Items   []models.Resource `json:"items"`
	Failed  bool              `json:"failed,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// ServeResources answers GET /api/resources?subject=&type= with the same
// result the subject pages render. subject accepts a display name or a slug.
//
// A store failure is reported as an empty list with "failed": true, not as
// an error status.
func (h *Handler) ServeResources(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimSpace(query.Get(r, "subject"))
	if raw == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "subject is required"})
		return
	}
	subject := h.Catalog.Canonical(raw)
	typ := strings.TrimSpace(query.Get(r, "type"))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	res := h.Query.Fetch(ctx, subject, typ)
	writeJSON(w, http.StatusOK, resourcesResponse{
		Subject: subject,
		Type:    typ,
		Items:   res.Items,
		Failed:  res.Failed,
	})
}

// ServeUser returns the caller's sign-in state and admin classification.
//
// Response format:
//
//	{ "isAuthenticated": bool, "name": "...", "email": "...", "isAdmin": bool, "badge": "ADMIN" }
func (h *Handler) ServeUser(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	gate := admingate.FromRequest(r)
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"isAuthenticated": false,
			"name":            "",
			"email":           "",
			"isAdmin":         false,
			"badge":           "",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"isAuthenticated": true,
		"name":            user.Name,
		"email":           user.Email,
		"isAdmin":         gate.IsAdmin(user),
		"badge":           gate.Badge(user),
	})
}
