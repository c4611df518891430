package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTMLSanitizes(t *testing.T) {
	r := NewRenderer()

	out, err := r.HTML("# Title\n\n<script>alert(1)</script>\n\n[x](javascript:alert(1)) and **bold**")
	require.NoError(t, err)
	assert.Contains(t, out, `id="title"`)
	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script")
	assert.NotContains(t, out, "javascript:")
}

func TestHTMLTables(t *testing.T) {
	out, err := NewRenderer().HTML("| a | b |\n|---|---|\n| 1 | 2 |\n")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
}

func TestWordCountIgnoresMarkup(t *testing.T) {
	assert.Equal(t, 3, NewRenderer().WordCount("**bold** text [link](https://example.com)"))
	assert.Equal(t, 0, NewRenderer().WordCount(""))
	assert.Equal(t, 4, NewRenderer().WordCount("# Año nuevo\n\n---\n\n- uno\n- 2\n\n> *\n"))
	assert.Equal(t, 0, NewRenderer().WordCount("  \n\t## --- *** >  "))
}

func TestReadingMinutes(t *testing.T) {
	r := NewRenderer()
	words := strings.TrimSpace(strings.Repeat("word ", 400))

	assert.Equal(t, 2, r.ReadingMinutes(words, nil))
	assert.Equal(t, 1, r.ReadingMinutes("", nil))

	explicit := 7
	assert.Equal(t, 7, r.ReadingMinutes(words, &explicit))
	zero := 0
	assert.Equal(t, 2, r.ReadingMinutes(words, &zero))
}

func TestMinutesForWords(t *testing.T) {
	assert.Equal(t, 1, MinutesForWords(0))
	assert.Equal(t, 1, MinutesForWords(299))
	assert.Equal(t, 2, MinutesForWords(300))
	assert.Equal(t, 5, MinutesForWords(1000))
}
