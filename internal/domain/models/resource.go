package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultResourceTitle is stored when an upload leaves the title blank.
const DefaultResourceTitle = "Untitled Resource"

// UnknownUploader is stored when the uploader has no email on record.
const UnknownUploader = "unknown"

// Resource is one piece of study material in the "resources" collection.
//
// Field names match the documents written by the original front-end, so
// existing data decodes without migration (note the camelCase uploadedBy).
type Resource struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Subject string `bson:"subject" json:"subject"` // canonical catalog key, e.g. "Mathematics-1"
	Type    string `bson:"type" json:"type"`       // catalog tab name, e.g. "Notes", "EE LAB"
	Title   string `bson:"title" json:"title"`
	Link    string `bson:"link" json:"link"`

	Timestamp  time.Time `bson:"timestamp" json:"timestamp"`
	UploadedBy string    `bson:"uploadedBy" json:"uploadedBy"`
}

// Validate reports whether a decoded document has every field the views
// rely on. Documents written by hand in the database console sometimes
// miss fields; those are rejected here instead of rendering blanks.
func (r Resource) Validate() error {
	switch {
	case strings.TrimSpace(r.Subject) == "":
		return fmt.Errorf("resource %s: missing subject", r.ID.Hex())
	case strings.TrimSpace(r.Type) == "":
		return fmt.Errorf("resource %s: missing type", r.ID.Hex())
	case strings.TrimSpace(r.Link) == "":
		return fmt.Errorf("resource %s: missing link", r.ID.Hex())
	}
	return nil
}

// DisplayTitle returns the title, falling back to a generic label.
func (r Resource) DisplayTitle() string {
	if strings.TrimSpace(r.Title) == "" {
		return "Open Resource"
	}
	return r.Title
}
