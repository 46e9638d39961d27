// Package catalog is the fixed subject -> resource-type table.
//
// The table is compiled into the binary (catalog.yaml via go:embed) and is
// read-only after load, so it is safe for concurrent use without locking.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/dalemusser/studysphere/internal/app/system/normalize"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Subject is one catalog entry.
type Subject struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"` // markdown
	Tabs        []string `yaml:"tabs"`
}

// Slug is the URL segment for the subject.
func (s Subject) Slug() string {
	return normalize.Slug(s.Name)
}

// Catalog maps subject names to their ordered tab lists.
type Catalog struct {
	subjects    []Subject
	byName      map[string]int
	byFold      map[string]int
	defaultTabs []string
}

type document struct {
	Subjects    []Subject `yaml:"subjects"`
	DefaultTabs []string  `yaml:"default_tabs"`
}

// Parse builds a Catalog from YAML. Subject names must be unique and
// every subject needs at least one tab.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	if len(doc.DefaultTabs) == 0 {
		return nil, fmt.Errorf("catalog: default_tabs is empty")
	}

	c := &Catalog{
		byName:      make(map[string]int, len(doc.Subjects)),
		byFold:      make(map[string]int, len(doc.Subjects)),
		defaultTabs: doc.DefaultTabs,
	}
	for i, s := range doc.Subjects {
		if strings.TrimSpace(s.Name) == "" {
			return nil, fmt.Errorf("catalog: subject %d has no name", i)
		}
		if len(s.Tabs) == 0 {
			return nil, fmt.Errorf("catalog: subject %q has no tabs", s.Name)
		}
		if _, dup := c.byName[s.Name]; dup {
			return nil, fmt.Errorf("catalog: duplicate subject %q", s.Name)
		}
		c.byName[s.Name] = i
		c.byFold[strings.ToLower(s.Name)] = i
		c.subjects = append(c.subjects, s)
	}
	return c, nil
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. It panics if the embedded file is
// invalid, which the package tests rule out.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCat = c
	})
	return defaultCat
}

// Subjects returns the subjects in display order.
func (c *Catalog) Subjects() []Subject {
	out := make([]Subject, len(c.subjects))
	copy(out, c.subjects)
	return out
}

// Has reports whether name is exactly a catalog key.
func (c *Catalog) Has(name string) bool {
	_, ok := c.byName[name]
	return ok
}

// Get returns the entry for an exact catalog key.
func (c *Catalog) Get(name string) (Subject, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Subject{}, false
	}
	return c.subjects[i], true
}

// TabsFor returns the ordered tab list for subject, or the default
// ["Notes", "Links"] when the subject is not in the catalog.
func (c *Catalog) TabsFor(subject string) []string {
	src := c.defaultTabs
	if i, ok := c.byName[subject]; ok {
		src = c.subjects[i].Tabs
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// HasTab reports whether typ (compared folded) is one of subject's tabs.
func (c *Catalog) HasTab(subject, typ string) bool {
	want := normalize.Type(typ)
	for _, t := range c.TabsFor(subject) {
		if normalize.Type(t) == want {
			return true
		}
	}
	return false
}

// Resolve maps a name onto the catalog key that matches it ignoring case
// ("hisp-1" -> "HISP-1"). Names with no match are returned unchanged.
func (c *Catalog) Resolve(name string) string {
	if _, ok := c.byName[name]; ok {
		return name
	}
	if i, ok := c.byFold[strings.ToLower(name)]; ok {
		return c.subjects[i].Name
	}
	return name
}

// Canonical is the single subject canonicalization used by both the read
// paths (URL slug -> stored name) and the upload path: reconstruct the name
// from its slug form, then snap it onto a catalog key when one matches.
func (c *Catalog) Canonical(s string) string {
	return c.Resolve(normalize.Subject(strings.TrimSpace(s)))
}
