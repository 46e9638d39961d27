// internal/app/store/resources/resourcestore.go
package resourcestore

import (
	"context"
	"time"

	"github.com/dalemusser/studysphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Collection holds resource records.
const Collection = "resources"

type Store struct {
	c   *mongo.Collection
	log *zap.Logger
}

func New(db *mongo.Database, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{c: db.Collection(Collection), log: logger}
}

// EnsureIndexes creates the subject lookup index.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "subject", Value: 1}, {Key: "timestamp", Value: -1}},
			Options: options.Index().SetName("idx_resource_subject_ts"),
		},
	})
	return err
}

// Create inserts r and returns it with its new ID. The caller has already
// validated and canonicalized the fields.
func (s *Store) Create(ctx context.Context, r models.Resource) (models.Resource, error) {
	r.ID = primitive.NewObjectID()
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		return models.Resource{}, err
	}
	return r, nil
}

// FindBySubject returns every well-formed resource whose subject equals
// subject exactly, newest first. Documents that fail to decode or validate
// are skipped and logged.
func (s *Store) FindBySubject(ctx context.Context, subject string) ([]models.Resource, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"subject": subject}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := make([]models.Resource, 0)
	for cur.Next(ctx) {
		var r models.Resource
		if err := cur.Decode(&r); err != nil {
			s.log.Warn("skipping undecodable resource",
				zap.Any("id", cur.Current.Lookup("_id")), zap.Error(err))
			continue
		}
		if err := r.Validate(); err != nil {
			s.log.Warn("skipping malformed resource", zap.Error(err))
			continue
		}
		out = append(out, r)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Watch opens a change stream that fires for inserts and replacements in
// subject, for updates that touch any subject's records, and for every
// delete (delete events carry no document to filter on).
func (s *Store) Watch(ctx context.Context, subject string) (*mongo.ChangeStream, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": bson.A{
			bson.M{"fullDocument.subject": subject},
			bson.M{"operationType": "delete"},
			bson.M{"updateDescription.updatedFields.subject": bson.M{"$exists": true}},
		}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)
	return s.c.Watch(ctx, pipeline, opts)
}
