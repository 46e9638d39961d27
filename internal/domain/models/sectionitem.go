package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Section identifiers for the per-subject notes/lab/links pages.
const (
	SectionNotes = "notes"
	SectionLab   = "lab"
	SectionLinks = "links"
)

// Sections lists every valid section in display order.
var Sections = []string{SectionNotes, SectionLab, SectionLinks}

// IsValidSection reports whether s names a known section.
func IsValidSection(s string) bool {
	for _, v := range Sections {
		if v == s {
			return true
		}
	}
	return false
}

// IsFileSection reports whether uploads to the section are files
// (notes, lab) rather than bare links.
func IsFileSection(s string) bool {
	return s == SectionNotes || s == SectionLab
}

// SectionItem is a file or link stored under a subject section
// (collection "subject_items"). File items carry Name and URL;
// link items carry only URL.
type SectionItem struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"id"`

	Subject string `bson:"subject" json:"subject"`
	Section string `bson:"section" json:"section"` // notes | lab | links

	Name string `bson:"name,omitempty" json:"name,omitempty"`
	URL  string `bson:"url" json:"url"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// Validate checks the fields every section view needs.
func (it SectionItem) Validate() error {
	if strings.TrimSpace(it.URL) == "" {
		return fmt.Errorf("section item %s: missing url", it.ID.Hex())
	}
	if !IsValidSection(it.Section) {
		return fmt.Errorf("section item %s: unknown section %q", it.ID.Hex(), it.Section)
	}
	return nil
}

// Label is what the section page shows for the item.
func (it SectionItem) Label() string {
	if it.Name != "" {
		return it.Name
	}
	return it.URL
}
