package sectionitems_test

import (
	"testing"

	"github.com/dalemusser/studysphere/internal/app/store/sectionitems"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"github.com/dalemusser/studysphere/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestStore_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sectionitems.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, it := range []models.SectionItem{
		{Subject: "Physics", Section: models.SectionNotes, Name: "a.pdf", URL: "/files/a.pdf"},
		{Subject: "Physics", Section: models.SectionNotes, Name: "b.pdf", URL: "/files/b.pdf"},
		{Subject: "Physics", Section: models.SectionLab, Name: "lab.pdf", URL: "/files/lab.pdf"},
		{Subject: "HISP-1", Section: models.SectionNotes, Name: "c.pdf", URL: "/files/c.pdf"},
	} {
		created, err := store.Create(ctx, it)
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if created.ID == primitive.NilObjectID || created.CreatedAt.IsZero() {
			t.Errorf("expected ID and CreatedAt, got %+v", created)
		}
	}

	got, err := store.List(ctx, "Physics", models.SectionNotes)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 items, got %d", len(got))
	}
	if got[0].Name != "a.pdf" || got[1].Name != "b.pdf" {
		t.Errorf("order: got %q, %q", got[0].Name, got[1].Name)
	}
}

func TestStore_List_SkipsMalformed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := sectionitems.New(db, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := db.Collection(sectionitems.Collection).InsertOne(ctx, map[string]any{
		"subject": "Physics", "section": "links",
	}); err != nil {
		t.Fatalf("InsertOne failed: %v", err)
	}
	if _, err := store.Create(ctx, models.SectionItem{Subject: "Physics", Section: models.SectionLinks, URL: "https://youtu.be/dQw4w9WgXcQ"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := store.List(ctx, "Physics", models.SectionLinks)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("expected 1 item, got %d", len(got))
	}
}
