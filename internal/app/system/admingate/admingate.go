// Package admingate decides whether the current principal is the site admin.
//
// There is exactly one admin, identified by email. The gate is built from
// configuration at startup and carried on the request context by Middleware,
// so templates and handlers can consult it without a package-level global.
//
// The gate only decides what to show. Writes are additionally refused by
// RequireAdmin on the admin routes.
package admingate

import (
	"context"
	"net/http"

	"github.com/dalemusser/studysphere/internal/app/system/auth"
)

// State is the tri-state classification of a request's principal.
type State int

const (
	SignedOut State = iota
	NonAdmin
	Admin
)

func (s State) String() string {
	switch s {
	case Admin:
		return "admin"
	case NonAdmin:
		return "non-admin"
	default:
		return "signed-out"
	}
}

// Badge labels.
const (
	BadgeAdmin    = "ADMIN"
	BadgeNotAdmin = "NOT ADMIN"
)

// Gate holds the configured admin identity.
type Gate struct {
	AdminEmail string // compared exactly, case-sensitive
	AccessKey  string // reveals the admin button when passed as ?key=
}

// New returns a Gate for the configured admin email and access key.
func New(adminEmail, accessKey string) *Gate {
	return &Gate{AdminEmail: adminEmail, AccessKey: accessKey}
}

// IsAdmin reports whether p is the configured admin. A nil principal or an
// unconfigured gate is never admin.
func (g *Gate) IsAdmin(p *auth.SessionUser) bool {
	if g == nil || p == nil || g.AdminEmail == "" {
		return false
	}
	return p.Email == g.AdminEmail
}

// Classify maps the principal onto SignedOut / NonAdmin / Admin.
func (g *Gate) Classify(p *auth.SessionUser) State {
	switch {
	case p == nil:
		return SignedOut
	case g.IsAdmin(p):
		return Admin
	default:
		return NonAdmin
	}
}

// Badge is the admin-bar label for p, empty when signed out.
func (g *Gate) Badge(p *auth.SessionUser) string {
	switch g.Classify(p) {
	case Admin:
		return BadgeAdmin
	case NonAdmin:
		return BadgeNotAdmin
	default:
		return ""
	}
}

// KeyMatches reports whether key equals the configured access key. An empty
// key, or an unconfigured access key, never matches.
func (g *Gate) KeyMatches(key string) bool {
	if g == nil || key == "" || g.AccessKey == "" {
		return false
	}
	return key == g.AccessKey
}

/*─────────────────────────────────────────────────────────────────────────────*
| Request plumbing                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

type ctxKey struct{}

// Middleware makes g available to downstream handlers via FromRequest.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithGate(r.Context(), g)))
	})
}

// WithGate returns ctx carrying g.
func WithGate(ctx context.Context, g *Gate) context.Context {
	return context.WithValue(ctx, ctxKey{}, g)
}

// FromRequest returns the gate installed by Middleware, or nil.
func FromRequest(r *http.Request) *Gate {
	g, _ := r.Context().Value(ctxKey{}).(*Gate)
	return g
}

// StateOf classifies the request's signed-in user.
func (g *Gate) StateOf(r *http.Request) State {
	u, _ := auth.CurrentUser(r)
	return g.Classify(u)
}

// RequireAdmin lets only the admin through. Signed-out browsers go to the
// login page; signed-in non-admins get the forbidden handler.
func (g *Gate) RequireAdmin(forbidden http.Handler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch g.StateOf(r) {
			case Admin:
				next.ServeHTTP(w, r)
			case NonAdmin:
				forbidden.ServeHTTP(w, r)
			default:
				auth.RedirectToLogin(w, r)
			}
		})
	}
}
