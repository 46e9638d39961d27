package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/studysphere/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	return WithChiURLParams(r, map[string]string{key: value})
}

// WithChiURLParams adds several chi URL parameters at once.
func WithChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateResource inserts a resource record as the upload form would.
func (f *Fixtures) CreateResource(ctx context.Context, subject, typ, title, link string) models.Resource {
	f.t.Helper()

	r := models.Resource{
		ID:         primitive.NewObjectID(),
		Subject:    subject,
		Type:       typ,
		Title:      title,
		Link:       link,
		Timestamp:  time.Now().UTC(),
		UploadedBy: "admin@test.com",
	}
	if _, err := f.db.Collection("resources").InsertOne(ctx, r); err != nil {
		f.t.Fatalf("failed to create test resource: %v", err)
	}
	return r
}

// CreateSectionItem inserts a notes/lab/links entry.
func (f *Fixtures) CreateSectionItem(ctx context.Context, subject, section, name, url string) models.SectionItem {
	f.t.Helper()

	it := models.SectionItem{
		ID:        primitive.NewObjectID(),
		Subject:   subject,
		Section:   section,
		Name:      name,
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("subject_items").InsertOne(ctx, it); err != nil {
		f.t.Fatalf("failed to create test section item: %v", err)
	}
	return it
}

// CreateUser inserts a user with the given bcrypt hash.
func (f *Fixtures) CreateUser(ctx context.Context, email, passwordHash string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		EmailCI:      text.Fold(email),
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}
