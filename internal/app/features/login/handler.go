// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/studysphere/internal/app/features/errors"
	"github.com/dalemusser/studysphere/internal/app/system/apperr"
	"github.com/dalemusser/studysphere/internal/app/system/auth"
	"github.com/dalemusser/studysphere/internal/app/system/authutil"
	"github.com/dalemusser/studysphere/internal/app/system/timeouts"
	"github.com/dalemusser/studysphere/internal/app/system/viewdata"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MsgInvalidCredentials is shown for every failed sign-in, whatever the cause.
const MsgInvalidCredentials = "Invalid credentials. Please try again."

// DefaultReturn is where a successful sign-in lands without ?return=.
const DefaultReturn = "/admin"

// UserFinder looks up password accounts.
type UserFinder interface {
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// Throttle refuses sign-in attempts that arrive too fast.
// *ratelimit.LoginLimiter satisfies it.
type Throttle interface {
	Check(r *http.Request, email string) string
	Succeeded(email string)
}

// LoginRecorder keeps a history of sign-ins. *loginstore.Store satisfies it.
type LoginRecorder interface {
	Record(ctx context.Context, r *http.Request, email, provider string) error
}

type Handler struct {
	Users         UserFinder
	SessionMgr    *auth.SessionManager
	Throttle      Throttle
	Logins        LoginRecorder
	ErrLog        *uierrors.ErrorLogger
	Log           *zap.Logger
	GoogleEnabled bool
}

func NewHandler(users UserFinder, sessionMgr *auth.SessionManager, throttle Throttle, logins LoginRecorder, errLog *uierrors.ErrorLogger, googleEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{
		Users:         users,
		SessionMgr:    sessionMgr,
		Throttle:      throttle,
		Logins:        logins,
		ErrLog:        errLog,
		Log:           logger,
		GoogleEnabled: googleEnabled,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin-login                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Admin login", "/"),
		Error:         googleError(query.Get(r, "error")),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

// googleError maps the ?error= code set by the Google callback to a message.
func googleError(code string) string {
	switch code {
	case "":
		return ""
	case "google_not_configured":
		return "Google sign-in is not available."
	case "unverified_email":
		return "Your Google account email is not verified."
	case "google_denied":
		return "Google sign-in was cancelled."
	default:
		return "Google sign-in failed. Please try again."
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin-login                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", auth.LoginPath)
		return
	}

	email := strings.TrimSpace(r.PostForm.Get("email"))
	password := r.PostForm.Get("password")
	returnURL := r.PostForm.Get("return")

	if msg := h.Throttle.Check(r, email); msg != "" {
		h.Log.Warn("admin login throttled", zap.String("email", email))
		h.renderFormWithError(w, r, http.StatusTooManyRequests, msg, email, returnURL)
		return
	}

	u, err := h.authenticate(r.Context(), email, password)
	switch {
	case apperr.IsAuth(err):
		h.Log.Info("admin login rejected", zap.String("email", email))
		h.renderFormWithError(w, r, http.StatusUnauthorized, MsgInvalidCredentials, email, returnURL)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find user", err, "A server error occurred.", auth.LoginPath)
		return
	}

	name := u.FullName
	if name == "" {
		name = u.Email
	}
	su := &auth.SessionUser{ID: u.ID.Hex(), Name: name, Email: u.Email, Provider: "password"}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("email", email))
		h.renderFormWithError(w, r, http.StatusInternalServerError, "Unable to create session. Please try again.", email, returnURL)
		return
	}

	h.Throttle.Succeeded(email)
	h.recordLogin(r, u.Email)
	h.Log.Info("signed in", zap.String("email", u.Email), zap.String("provider", "password"))
	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", DefaultReturn), http.StatusSeeOther)
}

func (h *Handler) recordLogin(r *http.Request, email string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()
	if err := h.Logins.Record(ctx, r, email, "password"); err != nil {
		h.Log.Warn("record login failed", zap.String("email", email), zap.Error(err))
	}
}

// authenticate returns apperr.ErrInvalidCredentials for a blank field, an
// unknown email or a wrong password. Other errors are store failures.
func (h *Handler) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, apperr.ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !authutil.CheckPassword(u.PasswordHash, password) {
		return nil, apperr.ErrInvalidCredentials
	}
	return u, nil
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, status int, msg, email, returnURL string) {
	w.WriteHeader(status)
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Admin login", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     returnURL,
		GoogleEnabled: h.GoogleEnabled,
	})
}
