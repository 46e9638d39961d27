package tips

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_FiveTips(t *testing.T) {
	got := Default()
	require.Len(t, got, 5)
	assert.Equal(t, "Focus on Concepts", got[0].Title)
	assert.Equal(t, "Teach What You Learn", got[4].Title)
	for _, tip := range got {
		assert.NotEmpty(t, tip.Body, tip.Title)
	}
}

func TestParse(t *testing.T) {
	src := "intro text\n\n## One\n\nfirst\nline\n\n## Two\nsecond\n"
	got := Parse(src)
	require.Len(t, got, 2)
	assert.Equal(t, Tip{Title: "One", Body: "first\nline"}, got[0])
	assert.Equal(t, Tip{Title: "Two", Body: "second"}, got[1])
}

func TestParse_NoHeadings(t *testing.T) {
	assert.Empty(t, Parse("just a paragraph"))
}
