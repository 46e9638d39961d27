// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/studysphere/internal/app/system/admingate"
	"github.com/dalemusser/studysphere/internal/app/system/auth"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// AccessKeyParam is the query parameter checked against the admin access key.
const AccessKeyParam = "key"

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(r, "Page Title", "/default-back"),
//	}
type BaseVM struct {
	SiteName string

	// User context (from session middleware + admin gate)
	IsLoggedIn bool
	UserName   string
	UserEmail  string
	IsAdmin    bool
	AdminBadge string // "ADMIN" | "NOT ADMIN" | ""

	// ShowAdminButton is true when ?key= matches the configured access key.
	ShowAdminButton bool

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string
}

// NewBaseVM creates a fully populated BaseVM for a page.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    models.DefaultSiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}

	u, signedIn := auth.CurrentUser(r)
	if signedIn {
		vm.IsLoggedIn = true
		vm.UserName = u.Name
		vm.UserEmail = u.Email
	}

	if g := admingate.FromRequest(r); g != nil {
		var p *auth.SessionUser
		if signedIn {
			p = u
		}
		vm.IsAdmin = g.IsAdmin(p)
		vm.AdminBadge = g.Badge(p)
		vm.ShowAdminButton = g.KeyMatches(r.URL.Query().Get(AccessKeyParam))
	}
	return vm
}
