package login_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/dalemusser/studysphere/internal/app/features/errors"
	"github.com/dalemusser/studysphere/internal/app/features/login"
	"github.com/dalemusser/studysphere/internal/app/system/authutil"
	"github.com/dalemusser/studysphere/internal/app/system/ratelimit"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"github.com/dalemusser/studysphere/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type memUsers struct {
	users map[string]*models.User
	err   error
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return u, nil
}

type openThrottle struct{ succeeded []string }

func (o *openThrottle) Check(*http.Request, string) string { return "" }
func (o *openThrottle) Succeeded(email string)            { o.succeeded = append(o.succeeded, email) }

type memLogins struct{ emails []string }

func (m *memLogins) Record(_ context.Context, _ *http.Request, email, provider string) error {
	m.emails = append(m.emails, email+"/"+provider)
	return nil
}

func newTestHandler(t *testing.T, users *memUsers) *login.Handler {
	t.Helper()
	testutil.BootTemplates(t)
	logger := zap.NewNop()
	return login.NewHandler(users, testutil.SessionManager(t), &openThrottle{}, &memLogins{}, uierrors.NewErrorLogger(logger), true, logger)
}

func adminUsers(t *testing.T) *memUsers {
	t.Helper()
	hash, err := authutil.HashPassword("correct-horse")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	return &memUsers{users: map[string]*models.User{
		testutil.AdminEmail: {ID: primitive.NewObjectID(), Email: testutil.AdminEmail, FullName: "Site Admin", PasswordHash: hash},
	}}
}

func loginRequest(values url.Values) *http.Request {
	r := httptest.NewRequest("POST", "/admin-login", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithGate(r)
}

func TestServeLogin(t *testing.T) {
	h := newTestHandler(t, adminUsers(t))
	rec := testutil.NewRecorder()
	h.ServeLogin(rec, testutil.NewRequest("GET", "/admin-login?return=/admin"))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `name="password"`)
	rec.AssertContains(t, `value="/admin"`)
	rec.AssertContains(t, "Sign in with Google")
}

func TestHandleLoginPost_Success(t *testing.T) {
	h := newTestHandler(t, adminUsers(t))
	rec := testutil.NewRecorder()
	h.HandleLoginPost(rec, loginRequest(url.Values{
		"email":    {testutil.AdminEmail},
		"password": {"correct-horse"},
	}))

	rec.AssertRedirect(t, login.DefaultReturn)
	if testutil.SessionCookie(rec.ResponseRecorder, "test-session") == nil {
		t.Error("expected a session cookie")
	}
	if th := h.Throttle.(*openThrottle); len(th.succeeded) != 1 {
		t.Errorf("throttle should be told about the sign-in, got %v", th.succeeded)
	}
	if got := h.Logins.(*memLogins).emails; len(got) != 1 || got[0] != testutil.AdminEmail+"/password" {
		t.Errorf("login records = %v", got)
	}
}

func TestHandleLoginPost_HonoursReturn(t *testing.T) {
	h := newTestHandler(t, adminUsers(t))
	rec := testutil.NewRecorder()
	h.HandleLoginPost(rec, loginRequest(url.Values{
		"email":    {testutil.AdminEmail},
		"password": {"correct-horse"},
		"return":   {"/sections/Physics/notes"},
	}))

	rec.AssertRedirect(t, "/sections/Physics/notes")
}

func TestHandleLoginPost_RejectsOffsiteReturn(t *testing.T) {
	h := newTestHandler(t, adminUsers(t))
	rec := testutil.NewRecorder()
	h.HandleLoginPost(rec, loginRequest(url.Values{
		"email":    {testutil.AdminEmail},
		"password": {"correct-horse"},
		"return":   {"https://evil.example.com/"},
	}))

	if loc := rec.Header().Get("Location"); strings.Contains(loc, "evil") {
		t.Errorf("offsite return must be ignored, got %q", loc)
	}
}

func TestHandleLoginPost_InvalidCredentials(t *testing.T) {
	tests := map[string]url.Values{
		"wrong password": {"email": {testutil.AdminEmail}, "password": {"nope-nope"}},
		"unknown email":  {"email": {"ghost@test.com"}, "password": {"correct-horse"}},
		"blank password": {"email": {testutil.AdminEmail}, "password": {""}},
		"blank email":    {"email": {""}, "password": {"correct-horse"}},
	}
	for name, form := range tests {
		t.Run(name, func(t *testing.T) {
			h := newTestHandler(t, adminUsers(t))
			rec := testutil.NewRecorder()
			h.HandleLoginPost(rec, loginRequest(form))

			rec.AssertStatus(t, http.StatusUnauthorized)
			rec.AssertContains(t, login.MsgInvalidCredentials)
			if testutil.SessionCookie(rec.ResponseRecorder, "test-session") != nil {
				t.Error("failed login must not set a session")
			}
		})
	}
}

func TestHandleLoginPost_StoreFailure(t *testing.T) {
	h := newTestHandler(t, &memUsers{err: errors.New("db down")})
	rec := testutil.NewRecorder()
	h.HandleLoginPost(rec, loginRequest(url.Values{
		"email":    {testutil.AdminEmail},
		"password": {"correct-horse"},
	}))

	rec.AssertStatus(t, http.StatusInternalServerError)
}

func TestServeLogin_GoogleErrors(t *testing.T) {
	tests := map[string]string{
		"google_not_configured": "Google sign-in is not available.",
		"unverified_email":      "Your Google account email is not verified.",
		"token_exchange":        "Google sign-in failed. Please try again.",
	}
	h := newTestHandler(t, adminUsers(t))
	for code, want := range tests {
		rec := testutil.NewRecorder()
		h.ServeLogin(rec, testutil.NewRequest("GET", "/admin-login?error="+code))
		rec.AssertStatus(t, http.StatusOK)
		rec.AssertContains(t, want)
	}
}

func TestHandleLoginPost_Throttled(t *testing.T) {
	h := newTestHandler(t, adminUsers(t))
	h.Throttle = ratelimit.NewLoginLimiter()

	bad := url.Values{"email": {testutil.AdminEmail}, "password": {"wrong-password"}}
	for i := 0; i < 5; i++ {
		rec := testutil.NewRecorder()
		h.HandleLoginPost(rec, loginRequest(bad))
		rec.AssertStatus(t, http.StatusUnauthorized)
	}

	// Even the right password is refused until the window passes.
	good := url.Values{"email": {testutil.AdminEmail}, "password": {"correct-horse"}}
	rec := testutil.NewRecorder()
	h.HandleLoginPost(rec, loginRequest(good))
	rec.AssertStatus(t, http.StatusTooManyRequests)
	rec.AssertContains(t, "Too many login attempts for this account")
}
