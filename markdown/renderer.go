// Package markdown renders post bodies to sanitized HTML and estimates
// reading time.
package markdown

import (
	"bytes"
	"math"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// WordsPerMinute is the reading speed used when a post has no explicit
// reading time.
const WordsPerMinute = 200

type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func NewRenderer() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, extension.Footnote, extension.Typographer,
		),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithXHTML(), gmhtml.WithUnsafe()),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	policy.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("code", "pre", "span")
	policy.AllowAttrs("target").OnElements("a")

	return &Renderer{md: md, policy: policy}
}

// HTML converts markdown to HTML and sanitizes the result.
func (r *Renderer) HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return r.policy.Sanitize(buf.String()), nil
}

// WordCount counts whitespace separated tokens of the markdown source that
// contain a letter or digit. Markup-only tokens like "#", "-" and "---" are
// not words. The source is scanned once and never rendered.
func (r *Renderer) WordCount(source string) int {
	words := 0
	hasText := false
	for _, c := range source {
		if unicode.IsSpace(c) {
			if hasText {
				words++
			}
			hasText = false
			continue
		}
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			hasText = true
		}
	}
	if hasText {
		words++
	}
	return words
}

// ReadingMinutes returns the explicit value when set, otherwise words/200
// rounded, never below one.
func (r *Renderer) ReadingMinutes(source string, explicit *int) int {
	if explicit != nil && *explicit > 0 {
		return *explicit
	}
	return MinutesForWords(r.WordCount(source))
}

func MinutesForWords(words int) int {
	return int(math.Max(1, math.Round(float64(words)/WordsPerMinute)))
}
