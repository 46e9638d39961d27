// Package normalize holds the small string canonicalizers shared by
// handlers and stores: emails, names, and the subject/type keys that map
// URL path segments onto stored resource records.
package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Email lower-cases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and preserves its case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// QueryParam trims a raw query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}

// Subject maps a URL slug back to the stored subject name.
//
// The slug is split on "-". A purely numeric token is glued back onto the
// previous word with a dash ("Mathematics-1"); every other token gets its
// first letter upper-cased and is joined with a space ("electrical-engineering"
// becomes "Electrical Engineering"). The function is total: a malformed slug
// yields a name that simply matches nothing in the catalog.
func Subject(slug string) string {
	tokens := strings.Split(slug, "-")
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if isDigits(tok) {
			parts = append(parts, "-"+tok)
			continue
		}
		parts = append(parts, upperFirst(tok))
	}
	return strings.ReplaceAll(strings.Join(parts, " "), " -", "-")
}

// Type folds a resource type for comparison ("  EE Lab " -> "ee lab").
// Only used to compare; pages display the raw value.
func Type(t string) string {
	return strings.TrimSpace(strings.ToLower(t))
}

// Slug turns a subject name into its URL segment by replacing runs of
// whitespace with a single dash ("Electrical Engineering" -> "Electrical-Engineering").
func Slug(subject string) string {
	return strings.Join(strings.Fields(subject), "-")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
