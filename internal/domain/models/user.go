package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account that can sign in with email and password.
// Whether the account is the admin is decided by the admin gate,
// never by a field stored here.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"-"`
	FullName     string             `bson:"full_name,omitempty" json:"full_name,omitempty"`
	PasswordHash string             `bson:"password_hash" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
