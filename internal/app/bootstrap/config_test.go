package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dalemusser/studysphere/internal/app/system/ratelimit"
)

func validConfig() AppConfig {
	return AppConfig{
		MongoURI:    "mongodb://localhost:27017",
		AdminEmail:  "admin@test.com",
		StorageType: "local",
	}
}

func TestValidateAppConfig(t *testing.T) {
	tests := map[string]struct {
		mutate  func(*AppConfig)
		wantErr string
	}{
		"valid":              {func(*AppConfig) {}, ""},
		"blank storage type": {func(c *AppConfig) { c.StorageType = "" }, ""},
		"missing admin":      {func(c *AppConfig) { c.AdminEmail = "" }, "admin_email"},
		"short password":     {func(c *AppConfig) { c.AdminPassword = "short" }, "admin_password"},
		"s3 without bucket":  {func(c *AppConfig) { c.StorageType = "s3" }, "storage_s3_bucket"},
		"s3 with bucket": {func(c *AppConfig) {
			c.StorageType = "S3"
			c.StorageS3Bucket = "studysphere"
		}, ""},
		"unknown storage":     {func(c *AppConfig) { c.StorageType = "ftp" }, "unknown storage_type"},
		"google id no secret": {func(c *AppConfig) { c.GoogleClientID = "id" }, "google_client"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := validateAppConfig(cfg)
			switch {
			case tc.wantErr == "" && err != nil:
				t.Errorf("unexpected error: %v", err)
			case tc.wantErr != "" && err == nil:
				t.Errorf("expected error containing %q", tc.wantErr)
			case tc.wantErr != "" && !strings.Contains(err.Error(), tc.wantErr):
				t.Errorf("error %q does not mention %q", err, tc.wantErr)
			}
		})
	}
}

func TestStorageName(t *testing.T) {
	for in, want := range map[string]string{"": "local", " S3 ": "s3", "local": "local"} {
		if got := storageName(in); got != want {
			t.Errorf("storageName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCSRFMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	h := csrfMiddleware("test-session-key", false)(ok)

	get := httptest.NewRecorder()
	h.ServeHTTP(get, httptest.NewRequest(http.MethodGet, "/", nil))
	if get.Code != http.StatusNoContent {
		t.Errorf("GET status = %d, want 204", get.Code)
	}

	post := httptest.NewRecorder()
	h.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/admin", strings.NewReader("title=x")))
	if post.Code != http.StatusForbidden {
		t.Errorf("POST without token status = %d, want 403", post.Code)
	}
}

func TestRealIP(t *testing.T) {
	var seen string
	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { seen = ratelimit.ClientIP(r) })

	newReq := func() *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/admin-login", nil)
		r.RemoteAddr = "198.51.100.7:4000"
		r.Header.Set("X-Forwarded-For", "203.0.113.9")
		return r
	}

	realIP(false)(echo).ServeHTTP(httptest.NewRecorder(), newReq())
	if seen != "198.51.100.7" {
		t.Errorf("untrusted: client IP = %q, want the connection address", seen)
	}

	realIP(true)(echo).ServeHTTP(httptest.NewRecorder(), newReq())
	if seen != "203.0.113.9" {
		t.Errorf("trusted: client IP = %q, want the forwarded address", seen)
	}
}
