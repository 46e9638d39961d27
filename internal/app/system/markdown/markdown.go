// Package markdown renders the site's authored markdown (study tips,
// subject blurbs) to sanitized HTML.
package markdown

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/dalemusser/studysphere/internal/app/system/htmlsanitize"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
)

// Renderer converts markdown to HTML. Raw HTML in the source is dropped by
// goldmark and the output is run through htmlsanitize before it is trusted.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a Renderer with GitHub-flavoured markdown, autolinks and
// heading ids.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Linkify,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	)
	return &Renderer{md: md}
}

// Render returns the sanitized HTML for src.
func (r *Renderer) Render(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return htmlsanitize.SanitizeToHTML(buf.String()), nil
}

// Inline renders a single-paragraph string without the surrounding <p>.
// Used for one-line blurbs inside cards.
func (r *Renderer) Inline(src string) (template.HTML, error) {
	out, err := r.Render(src)
	if err != nil {
		return "", err
	}
	s := strings.TrimSpace(string(out))
	if strings.HasPrefix(s, "<p>") && strings.HasSuffix(s, "</p>") && strings.Count(s, "<p>") == 1 {
		s = strings.TrimSuffix(strings.TrimPrefix(s, "<p>"), "</p>")
	}
	return template.HTML(s), nil
}
