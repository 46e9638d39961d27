package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// LoginRecord is one successful sign-in, kept in "login_records".
type LoginRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Email     string             `bson:"email"`
	Provider  string             `bson:"provider"` // "password" or "google"
	IP        string             `bson:"ip"`
	UserAgent string             `bson:"user_agent,omitempty"`
	CreatedAt time.Time          `bson:"created_at"`
}
