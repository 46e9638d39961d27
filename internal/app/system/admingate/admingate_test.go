package admingate_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/studysphere/internal/app/system/admingate"
	"github.com/dalemusser/studysphere/internal/app/system/auth"
)

const adminEmail = "admin@studysphere.test"

func newGate() *admingate.Gate {
	return admingate.New(adminEmail, "open-sesame")
}

func TestIsAdmin(t *testing.T) {
	g := newGate()

	tests := []struct {
		name string
		p    *auth.SessionUser
		want bool
	}{
		{"nil principal", nil, false},
		{"exact match", &auth.SessionUser{Email: adminEmail}, true},
		{"different email", &auth.SessionUser{Email: "student@studysphere.test"}, false},
		{"case differs", &auth.SessionUser{Email: "Admin@StudySphere.test"}, false},
		{"surrounding whitespace", &auth.SessionUser{Email: " " + adminEmail + " "}, false},
		{"trailing space", &auth.SessionUser{Email: adminEmail + " "}, false},
		{"leading tab", &auth.SessionUser{Email: "\t" + adminEmail}, false},
		{"trailing newline", &auth.SessionUser{Email: adminEmail + "\n"}, false},
		{"empty email", &auth.SessionUser{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.IsAdmin(tt.p); got != tt.want {
				t.Errorf("IsAdmin: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsAdmin_UnconfiguredGate(t *testing.T) {
	g := admingate.New("", "")
	if g.IsAdmin(&auth.SessionUser{Email: ""}) {
		t.Error("an empty admin email must not match an empty principal email")
	}

	var nilGate *admingate.Gate
	if nilGate.IsAdmin(&auth.SessionUser{Email: adminEmail}) {
		t.Error("nil gate must never report admin")
	}
}

func TestClassifyAndBadge(t *testing.T) {
	g := newGate()

	tests := []struct {
		name      string
		p         *auth.SessionUser
		wantState admingate.State
		wantBadge string
	}{
		{"signed out", nil, admingate.SignedOut, ""},
		{"non-admin", &auth.SessionUser{Email: "x@y.z"}, admingate.NonAdmin, "NOT ADMIN"},
		{"admin", &auth.SessionUser{Email: adminEmail}, admingate.Admin, "ADMIN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.Classify(tt.p); got != tt.wantState {
				t.Errorf("Classify: got %v, want %v", got, tt.wantState)
			}
			if got := g.Badge(tt.p); got != tt.wantBadge {
				t.Errorf("Badge: got %q, want %q", got, tt.wantBadge)
			}
		})
	}
}

func TestKeyMatches(t *testing.T) {
	g := newGate()

	if !g.KeyMatches("open-sesame") {
		t.Error("expected configured key to match")
	}
	if g.KeyMatches("OPEN-SESAME") {
		t.Error("key comparison must be exact")
	}
	if g.KeyMatches("") {
		t.Error("empty key must never match")
	}
	if admingate.New(adminEmail, "").KeyMatches("") {
		t.Error("empty key must never match an unconfigured key")
	}
}

func TestMiddleware_FromRequest(t *testing.T) {
	g := newGate()

	var got *admingate.Gate
	h := g.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = admingate.FromRequest(r)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if got != g {
		t.Error("expected gate on request context")
	}
	if admingate.FromRequest(httptest.NewRequest("GET", "/", nil)) != nil {
		t.Error("expected nil gate without middleware")
	}
}

func TestRequireAdmin(t *testing.T) {
	g := newGate()

	forbidden := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := g.RequireAdmin(forbidden)(ok)

	t.Run("signed out redirects to login", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/admin", nil)
		req.Header.Set("Accept", "text/html")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusSeeOther {
			t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
		}
		if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/admin-login") {
			t.Errorf("Location: got %q", loc)
		}
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		req := auth.WithTestUser(httptest.NewRequest("GET", "/admin", nil), &auth.SessionUser{Email: "x@y.z"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("status: got %d, want %d", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("admin proceeds", func(t *testing.T) {
		req := auth.WithTestUser(httptest.NewRequest("GET", "/admin", nil), &auth.SessionUser{Email: adminEmail})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status: got %d, want %d", rec.Code, http.StatusOK)
		}
	})
}
