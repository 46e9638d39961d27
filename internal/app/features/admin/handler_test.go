package admin_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/dalemusser/studysphere/internal/app/features/admin"
	uierrors "github.com/dalemusser/studysphere/internal/app/features/errors"
	"github.com/dalemusser/studysphere/internal/app/system/catalog"
	"github.com/dalemusser/studysphere/internal/app/system/uploads"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"github.com/dalemusser/studysphere/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type memResources struct {
	records []models.Resource
	err     error
}

func (m *memResources) Create(_ context.Context, r models.Resource) (models.Resource, error) {
	if m.err != nil {
		return models.Resource{}, m.err
	}
	r.ID = primitive.NewObjectID()
	m.records = append(m.records, r)
	return r, nil
}

type noItems struct{}

func (noItems) Create(context.Context, models.SectionItem) (models.SectionItem, error) {
	return models.SectionItem{}, errors.New("not used")
}

func newTestRouter(t *testing.T, res *memResources) http.Handler {
	t.Helper()
	testutil.BootTemplates(t)
	logger := zap.NewNop()
	cat := catalog.Default()
	pipeline := uploads.New(res, noItems{}, nil, cat, logger)
	h := admin.NewHandler(pipeline, cat, uierrors.NewErrorLogger(logger), logger)
	return admin.Routes(h, testutil.Gate(), http.HandlerFunc(uierrors.NewHandler().Forbidden))
}

func postForm(values url.Values, user testutil.TestUser) *http.Request {
	r := httptest.NewRequest("POST", "/", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return testutil.WithUser(testutil.WithGate(r), user)
}

func TestServeForm_Admin(t *testing.T) {
	router := newTestRouter(t, &memResources{})
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/", testutil.AdminUser()))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `<option value="Mathematics-1">Mathematics-1</option>`)
	rec.AssertContains(t, `id="type" disabled`)
}

func TestServeForm_NonAdminForbidden(t *testing.T) {
	router := newTestRouter(t, &memResources{})
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/", testutil.StudentUser()))

	rec.AssertStatus(t, http.StatusForbidden)
}

func TestServeForm_SignedOutRedirects(t *testing.T) {
	router := newTestRouter(t, &memResources{})
	req := testutil.NewRequest("GET", "/")
	req.Header.Set("Accept", "text/html")
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, req)

	rec.AssertRedirect(t, "/admin-login?return=%2F")
}

func TestServeTypes(t *testing.T) {
	router := newTestRouter(t, &memResources{})

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/types?subject=Physics", testutil.AdminUser()))
	rec.AssertContains(t, `<option value="PHY LAB">PHY LAB</option>`)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/types?subject=Chemistry", testutil.AdminUser()))
	body := rec.Body.String()
	if !strings.Contains(body, `>Notes<`) || !strings.Contains(body, `>Links<`) || strings.Contains(body, "LAB") {
		t.Errorf("unknown subject should get the default tabs, got %q", body)
	}

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewAuthenticatedRequest("GET", "/types", testutil.AdminUser()))
	if strings.Contains(rec.Body.String(), "<option") {
		t.Error("no subject means no type options")
	}
}

func TestHandleSubmit_Success(t *testing.T) {
	res := &memResources{}
	router := newTestRouter(t, res)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, postForm(url.Values{
		"subject": {"Physics"},
		"type":    {"Notes"},
		"title":   {""},
		"link":    {" https://example.com/kin "},
	}, testutil.AdminUser()))

	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, admin.MsgSuccess)
	if len(res.records) != 1 {
		t.Fatalf("records: got %d, want 1", len(res.records))
	}
	got := res.records[0]
	if got.Title != models.DefaultResourceTitle || got.Link != "https://example.com/kin" || got.UploadedBy != testutil.AdminEmail {
		t.Errorf("unexpected record %+v", got)
	}
}

func TestHandleSubmit_MissingFields(t *testing.T) {
	res := &memResources{}
	router := newTestRouter(t, res)
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, postForm(url.Values{
		"subject": {"Physics"},
		"type":    {""},
		"link":    {"https://example.com"},
	}, testutil.AdminUser()))

	rec.AssertStatus(t, http.StatusUnprocessableEntity)
	rec.AssertContains(t, admin.MsgMissingFields)
	rec.AssertContains(t, `value="https://example.com"`)
	if len(res.records) != 0 {
		t.Error("invalid submit must not write")
	}
}

func TestHandleSubmit_WriteFailure(t *testing.T) {
	router := newTestRouter(t, &memResources{err: errors.New("store down")})
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, postForm(url.Values{
		"subject": {"Physics"},
		"type":    {"Notes"},
		"link":    {"https://example.com"},
	}, testutil.AdminUser()))

	rec.AssertStatus(t, http.StatusInternalServerError)
	rec.AssertContains(t, admin.MsgFailed)
}
