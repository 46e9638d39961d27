// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/dalemusser/studysphere/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// ServeLogout handles POST /logout: clears the session and returns to the
// admin login page.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok {
		h.Log.Info("signed out", zap.String("email", u.Email))
	}
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	// HTMX handling: use HX-Redirect to force a client-side navigation.
	if r.Header.Get("HX-Request") != "" {
		w.Header().Set("HX-Redirect", auth.LoginPath)
		w.WriteHeader(http.StatusOK)
		return
	}

	http.Redirect(w, r, auth.LoginPath, http.StatusSeeOther)
}
