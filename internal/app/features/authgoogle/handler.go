// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dalemusser/studysphere/internal/app/system/auth"
	"github.com/dalemusser/studysphere/internal/app/system/authutil"
	"github.com/dalemusser/studysphere/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultUserInfoURL is Google's userinfo endpoint.
const DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// StateTTL bounds how long a sign-in may take between redirect and callback.
const StateTTL = 10 * time.Minute

// StateStore persists the anti-forgery state between the redirect and the
// callback. *oauthstate.Store satisfies it.
type StateStore interface {
	Save(ctx context.Context, state, returnURL string, expiresAt time.Time) error
	Consume(ctx context.Context, state string) (returnURL string, valid bool, err error)
}

// LoginRecorder keeps a history of sign-ins. *loginstore.Store satisfies it.
type LoginRecorder interface {
	Record(ctx context.Context, r *http.Request, email, provider string) error
}

// Handler handles Google OAuth authentication. Any verified Google account
// may sign in; whether it is the admin is decided by the admin gate.
type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	StateStore StateStore
	Logins     LoginRecorder

	// OAuth configuration
	ClientID     string
	ClientSecret string
	RedirectURL  string // e.g., "https://studysphere.example/auth/google/callback"
	Endpoint     oauth2.Endpoint
	UserInfoURL  string
}

// NewHandler creates a new Google OAuth handler.
func NewHandler(sessionMgr *auth.SessionManager, stateStore StateStore, logins LoginRecorder, clientID, clientSecret, baseURL string, logger *zap.Logger) *Handler {
	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		StateStore:   stateStore,
		Logins:       logins,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  strings.TrimRight(baseURL, "/") + "/auth/google/callback",
		Endpoint:     google.Endpoint,
		UserInfoURL:  DefaultUserInfoURL,
	}
}

// oauth2Config returns the Google OAuth2 configuration.
func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes: []string{
			"openid",
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: h.Endpoint,
	}
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

func (h *Handler) redirectToLogin(w http.ResponseWriter, r *http.Request, errorCode string) {
	http.Redirect(w, r, auth.LoginPath+"?error="+errorCode, http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Initiates the Google OAuth flow by redirecting to Google's consent screen.   |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		h.redirectToLogin(w, r, "google_not_configured")
		return
	}

	state, err := authutil.GenerateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}

	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.StateStore.Save(ctx, state, returnURL, time.Now().UTC().Add(StateTTL)); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}

	url := h.oauth2Config().AuthCodeURL(state)
	h.Log.Debug("initiating Google OAuth flow", zap.String("return_url", returnURL))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code, fetches the Google profile and signs the user in.        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		h.Log.Warn("Google OAuth error",
			zap.String("error", errParam),
			zap.String("description", q.Get("error_description")))
		h.redirectToLogin(w, r, "google_denied")
		return
	}

	state := q.Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		h.redirectToLogin(w, r, "invalid_state")
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Consume(ctxTimeout, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		h.redirectToLogin(w, r, "internal")
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		h.redirectToLogin(w, r, "invalid_state")
		return
	}

	code := q.Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		h.redirectToLogin(w, r, "invalid_code")
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		h.redirectToLogin(w, r, "token_exchange")
		return
	}

	info, err := h.fetchUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Google user info", zap.Error(err))
		h.redirectToLogin(w, r, "user_info")
		return
	}
	if info.Email == "" || !info.EmailVerified {
		h.Log.Info("Google OAuth: unverified email", zap.String("google_id", info.ID))
		h.redirectToLogin(w, r, "unverified_email")
		return
	}

	name := info.Name
	if name == "" {
		name = info.Email
	}
	su := &auth.SessionUser{ID: info.ID, Name: name, Email: info.Email, Provider: "google"}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("email", info.Email))
		h.redirectToLogin(w, r, "internal")
		return
	}

	recCtx, recCancel := context.WithTimeout(ctx, timeouts.Short())
	if err := h.Logins.Record(recCtx, r, info.Email, "google"); err != nil {
		h.Log.Warn("record login failed", zap.String("email", info.Email), zap.Error(err))
	}
	recCancel()

	h.Log.Info("signed in", zap.String("email", info.Email), zap.String("provider", "google"))
	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/"), http.StatusSeeOther)
}

// googleUserInfo represents user info returned from Google.
type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

func (h *Handler) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*googleUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get(h.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}
