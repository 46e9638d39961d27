package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session constants                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	// LoginPath is where unauthenticated browsers are sent.
	LoginPath = "/admin-login"

	isAuthKey   = "is_authenticated"
	userIDKey   = "user_id"
	userNameKey = "user_name"
	userEmail   = "user_email"
	providerKey = "auth_provider"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the signed-in principal cached in the session and injected
// into r.Context(). Email is what the admin gate compares against.
type SessionUser struct {
	ID       string
	Name     string
	Email    string
	Provider string // "password" or "google"
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// WithTestUser injects u into the request context, bypassing the cookie.
// Used by handler tests.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the middleware built on it.
type SessionManager struct {
	store  *sessions.CookieStore
	name   string
	logger *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure + SameSite=None.
// In local dev over http://localhost use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "studysphere-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, logger: logger}, nil
}

// Store exposes the underlying cookie store.
func (m *SessionManager) Store() *sessions.CookieStore { return m.store }

// Name is the session cookie name.
func (m *SessionManager) Name() string { return m.name }

// GetSession returns the request's session. A cookie that no longer decodes
// (rotated key, tampering) yields a fresh empty session rather than an error.
func (m *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			m.logger.Debug("discarding undecodable session cookie", zap.Error(err))
			return sess, nil
		}
		return sess, err
	}
	return sess, nil
}

// SignIn stores u in the session cookie.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, err := m.GetSession(r)
	if err != nil {
		return err
	}
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[userNameKey] = u.Name
	sess.Values[userEmail] = u.Email
	sess.Values[providerKey] = u.Provider
	return sess.Save(r, w)
}

// SignOut clears the session and expires the cookie.
func (m *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.GetSession(r)
	if err != nil {
		return err
	}
	for k := range sess.Values {
		delete(sess.Values, k)
	}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}

// LoadSessionUser injects the user into context if they are signed in.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.GetSession(r)
		if err != nil {
			m.logger.Warn("session load failed", zap.Error(err))
			next.ServeHTTP(w, r)
			return
		}

		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			r = withUser(r, &SessionUser{
				ID:       getString(sess, userIDKey),
				Name:     getString(sess, userNameKey),
				Email:    getString(sess, userEmail),
				Provider: getString(sess, providerKey),
			})
		}
		next.ServeHTTP(w, r)
	})
}

// RequireSignedIn ensures there is a user in context (set by LoadSessionUser).
// If not signed in:
//   - HTML: 303 redirect to /admin-login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}
		RedirectToLogin(w, r)
	})
}

// RedirectToLogin sends browsers to the login page (preserving the return
// path) and answers API callers with 401.
func RedirectToLogin(w http.ResponseWriter, r *http.Request) {
	if WantsHTML(r) {
		ret := url.QueryEscape(r.URL.RequestURI())
		http.Redirect(w, r, LoginPath+"?return="+ret, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// WantsHTML treats a request as a browser page load when it is a form post
// or accepts text/html.
func WantsHTML(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "text/html") {
		return true
	}
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded") ||
		strings.HasPrefix(ct, "multipart/form-data")
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}
