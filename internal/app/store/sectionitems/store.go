// internal/app/store/sectionitems/store.go
package sectionitems

import (
	"context"
	"time"

	"github.com/dalemusser/studysphere/internal/app/system/livefeed"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection holds the notes/lab/links entries of every subject.
const Collection = "subject_items"

// Store reads and writes section items.
type Store struct {
	c   *mongo.Collection
	log *zap.Logger
}

// New creates a section item Store.
func New(db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{c: db.Collection(Collection), log: logger}
}

// EnsureIndexes creates the (subject, section) lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "subject", Value: 1},
				{Key: "section", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().SetName("idx_item_subject_section"),
		},
	})
	return err
}

// Create inserts it, assigning ID and CreatedAt.
func (s *Store) Create(ctx context.Context, it models.SectionItem) (models.SectionItem, error) {
	it.ID = primitive.NewObjectID()
	if it.CreatedAt.IsZero() {
		it.CreatedAt = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, it); err != nil {
		return models.SectionItem{}, err
	}
	return it, nil
}

// List returns the items of one subject section in upload order.
// Malformed documents are skipped and logged.
func (s *Store) List(ctx context.Context, subject, section string) ([]models.SectionItem, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"subject": subject, "section": section}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.SectionItem, 0)
	for cur.Next(ctx) {
		var it models.SectionItem
		if err := cur.Decode(&it); err != nil {
			s.log.Warn("skipping undecodable section item", zap.Error(err))
			continue
		}
		if err := it.Validate(); err != nil {
			s.log.Warn("skipping malformed section item", zap.Error(err))
			continue
		}
		out = append(out, it)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// watchMatch selects the events that can change one section's listing:
// writes whose document is in the section, every delete (no document to
// match on), and updates that move any item between subjects or sections,
// since the looked-up document then shows only the new location.
func watchMatch(subject, section string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"fullDocument.subject": subject, "fullDocument.section": section},
		bson.M{"operationType": "delete"},
		bson.M{"updateDescription.updatedFields.subject": bson.M{"$exists": true}},
		bson.M{"updateDescription.updatedFields.section": bson.M{"$exists": true}},
	}}
}

// Watch opens a change stream over one subject section.
func (s *Store) Watch(ctx context.Context, subject, section string) (*mongo.ChangeStream, error) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: watchMatch(subject, section)}}}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	return s.c.Watch(ctx, pipeline, opts)
}

// WatchSource is Watch typed for livefeed.
func (s *Store) WatchSource(ctx context.Context, subject, section string) (livefeed.ChangeSource, error) {
	cs, err := s.Watch(ctx, subject, section)
	if err != nil {
		return nil, err
	}
	return cs, nil
}
