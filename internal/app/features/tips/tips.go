package tips

import (
	_ "embed"
	"strings"
)

//go:embed tips.md
var tipsMarkdown string

// Tip is one card on the study tips page. Body is markdown.
type Tip struct {
	Title string
	Body  string
}

// Parse splits a markdown document into tips, one per level-two heading.
// Text before the first heading is ignored.
func Parse(src string) []Tip {
	var out []Tip
	var cur *Tip
	var body []string

	flush := func() {
		if cur != nil {
			cur.Body = strings.TrimSpace(strings.Join(body, "\n"))
			out = append(out, *cur)
		}
		body = body[:0]
	}

	for _, line := range strings.Split(src, "\n") {
		if title, ok := strings.CutPrefix(line, "## "); ok {
			flush()
			cur = &Tip{Title: strings.TrimSpace(title)}
			continue
		}
		if cur != nil {
			body = append(body, line)
		}
	}
	flush()
	return out
}

// Default returns the compiled-in tips.
func Default() []Tip {
	return Parse(tipsMarkdown)
}
