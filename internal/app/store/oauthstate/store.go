// Package oauthstate keeps the pending Google sign-in requests between the
// redirect to Google and the callback.
package oauthstate

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// pending is one outstanding sign-in. Only a digest of the state value is
// stored; the value itself lives in the user's browser until the callback.
type pending struct {
	Digest    string    `bson:"digest"`
	ReturnURL string    `bson:"return_url,omitempty"`
	ExpiresAt time.Time `bson:"expires_at"`
	CreatedAt time.Time `bson:"created_at"`
}

// Store persists pending sign-ins in the oauth_states collection.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection("oauth_states"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// EnsureIndexes adds the unique digest index and a TTL index so abandoned
// sign-ins disappear on their own.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "digest", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_state_digest"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_state_ttl"),
		},
	})
	return err
}

func digest(state string) string {
	sum := sha256.Sum256([]byte(state))
	return hex.EncodeToString(sum[:])
}

// Save records a new pending sign-in valid until expiresAt.
func (s *Store) Save(ctx context.Context, state, returnURL string, expiresAt time.Time) error {
	_, err := s.c.InsertOne(ctx, pending{
		Digest:    digest(state),
		ReturnURL: returnURL,
		ExpiresAt: expiresAt.UTC(),
		CreatedAt: s.now(),
	})
	return err
}

// Consume removes the pending sign-in for state and returns its return URL.
// valid is false when the state is unknown, already used or expired. The TTL
// monitor runs about once a minute, so expiry is checked here as well.
func (s *Store) Consume(ctx context.Context, state string) (returnURL string, valid bool, err error) {
	var p pending
	err = s.c.FindOneAndDelete(ctx, bson.M{
		"digest":     digest(state),
		"expires_at": bson.M{"$gt": s.now()},
	}).Decode(&p)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return p.ReturnURL, true, nil
}
