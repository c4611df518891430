package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Hello, World! 2024": "hello-world-2024",
		"  Crème Brûlée  ":   "creme-brulee",
		"Año Nuevo":          "ano-nuevo",
		"---":                "",
		"already-a-slug":     "already-a-slug",
		"Go_and Rust":        "go-and-rust",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestParseTags(t *testing.T) {
	assert.Equal(t, []string{"go", "rust", "web-dev"}, ParseTags("Go, go ,Rust,, Web Dev"))
	assert.Empty(t, ParseTags(""))
	assert.Empty(t, ParseTags(" , ,"))
}

func TestSanitizeLocale(t *testing.T) {
	assert.Equal(t, LocaleES, SanitizeLocale("es"))
	assert.Equal(t, LocaleEN, SanitizeLocale("en"))
	assert.Equal(t, LocaleEN, SanitizeLocale("fr"))
	assert.Equal(t, LocaleEN, SanitizeLocale(""))

	assert.True(t, IsSupportedLocale("es"))
	assert.False(t, IsSupportedLocale("ES"))
}

func TestSanitizeSlug(t *testing.T) {
	assert.Equal(t, "etc-passwd", SanitizeSlug("../etc-passwd"))
	assert.Equal(t, "helloworld", SanitizeSlug("hello world!"))
	assert.Equal(t, "my-post", SanitizeSlug("my_post"))
	assert.Equal(t, "", SanitizeSlug("%%%"))
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, 10, SanitizeLimit("", 10, 50))
	assert.Equal(t, 10, SanitizeLimit("abc", 10, 50))
	assert.Equal(t, 10, SanitizeLimit("0", 10, 50))
	assert.Equal(t, 10, SanitizeLimit("-3", 10, 50))
	assert.Equal(t, 7, SanitizeLimit("7", 10, 50))
	assert.Equal(t, 7, SanitizeLimit("7.9", 10, 50))
	assert.Equal(t, 50, SanitizeLimit("500", 10, 50))

	assert.Equal(t, 0, SanitizeOffset("-1"))
	assert.Equal(t, 0, SanitizeOffset("x"))
	assert.Equal(t, 20, SanitizeOffset("20"))
}

func TestNormalizeURL(t *testing.T) {
	assert.Nil(t, NormalizeURL("   "))
	assert.Equal(t, "https://example.com", *NormalizeURL(" example.com "))
	assert.Equal(t, "https://cdn.example.com/a.png", *NormalizeURL("//cdn.example.com/a.png"))
	assert.Equal(t, "HTTP://example.com", *NormalizeURL("HTTP://example.com"))
	assert.Equal(t, "http://example.com", *NormalizeURL("http://example.com"))
}

func TestIsWebURL(t *testing.T) {
	assert.True(t, IsWebURL(""))
	assert.True(t, IsWebURL("/uploads/a.png"))
	assert.True(t, IsWebURL("https://example.com/a.png"))
	assert.False(t, IsWebURL("javascript:alert(1)"))
	assert.False(t, IsWebURL("example.com"))
}

func TestNullableString(t *testing.T) {
	assert.Nil(t, NullableString(" \t"))
	assert.Equal(t, "x", *NullableString(" x "))
}

func TestUnderscore(t *testing.T) {
	assert.Equal(t, "author_id", Underscore("AuthorID"))
	assert.Equal(t, "http_server", Underscore("HTTPServer"))
	assert.Equal(t, "title", Underscore("Title"))
}
