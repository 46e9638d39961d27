package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/studysphere/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
var ErrDuplicateEmail = errors.New("a user with this email already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes makes email_ci unique.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email_ci", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_user_email_ci"),
	})
	return err
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(strings.TrimSpace(email))}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user. Email is stored as given (trimmed); lookups
// go through the folded email_ci.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.Email = strings.TrimSpace(u.Email)
	u.EmailCI = text.Fold(u.Email)
	u.FullName = strings.TrimSpace(u.FullName)
	u.CreatedAt = now
	u.UpdatedAt = now

	if u.Email == "" {
		return models.User{}, mongo.CommandError{Message: "email is required"}
	}
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// UpsertPassword creates the user for email if missing and sets its
// password hash. Used to seed the admin account at startup.
func (s *Store) UpsertPassword(ctx context.Context, email, fullName, passwordHash string) (created bool, err error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return false, mongo.CommandError{Message: "email is required"}
	}
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email_ci": text.Fold(email)},
		bson.M{
			"$set": bson.M{
				"email":         email,
				"password_hash": passwordHash,
				"updated_at":    now,
			},
			"$setOnInsert": bson.M{
				"_id":        primitive.NewObjectID(),
				"email_ci":   text.Fold(email),
				"full_name":  strings.TrimSpace(fullName),
				"created_at": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}
