// internal/app/store/logins/loginstore.go
package loginstore

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/studysphere/internal/app/system/ratelimit"
	"github.com/dalemusser/studysphere/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Retention is how long sign-in records are kept before the TTL index
// removes them.
const Retention = 90 * 24 * time.Hour

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("login_records")}
}

// EnsureIndexes creates the lookup and TTL indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_login_email_created"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(Retention.Seconds())).SetName("idx_login_ttl"),
		},
	})
	return err
}

// Create inserts rec. A zero CreatedAt is set to now.
func (s *Store) Create(ctx context.Context, rec models.LoginRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, rec)
	return err
}

// Record stores a successful sign-in made by r.
func (s *Store) Record(ctx context.Context, r *http.Request, email, provider string) error {
	return s.Create(ctx, models.LoginRecord{
		Email:     email,
		Provider:  provider,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
	})
}

// Recent returns the newest records for email, newest first.
func (s *Store) Recent(ctx context.Context, email string, limit int64) ([]models.LoginRecord, error) {
	cur, err := s.c.Find(ctx, bson.M{"email": email},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.LoginRecord
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
