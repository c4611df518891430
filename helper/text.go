package helper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	LocaleEN = "en"
	LocaleES = "es"

	DefaultLimit = 10
	MaxLimit     = 50
)

var (
	nonAlnum       = regexp.MustCompile(`[^a-z0-9]+`)
	nonWord        = regexp.MustCompile(`[^A-Za-z0-9_-]+`)
	schemeRe       = regexp.MustCompile(`(?i)^https?://`)
	camelBoundary  = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	acronymBoundry = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
)

// Slugify turns free text into a lowercase, hyphen separated identifier.
// "Hello, World! 2024" becomes "hello-world-2024".
func Slugify(input string) string {
	decomposed := norm.NFKD.String(input)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if r >= 0x0300 && r <= 0x036f {
			continue
		}
		b.WriteRune(r)
	}
	s := strings.ToLower(b.String())
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ParseTags splits a comma separated list into unique, non-empty slugs,
// keeping first-seen order.
func ParseTags(input string) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, part := range strings.Split(input, ",") {
		slug := Slugify(strings.TrimSpace(part))
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		tags = append(tags, slug)
	}
	return tags
}

// SanitizeLocale collapses any input to one of the supported locales.
func SanitizeLocale(locale string) string {
	if locale == LocaleES {
		return LocaleES
	}
	return LocaleEN
}

// IsSupportedLocale reports whether locale is exactly one of the supported codes.
func IsSupportedLocale(locale string) bool {
	return locale == LocaleEN || locale == LocaleES
}

// SanitizeSlug strips anything that is not a word character or hyphen and
// re-slugifies the rest.
func SanitizeSlug(slug string) string {
	return Slugify(nonWord.ReplaceAllString(slug, ""))
}

// SanitizeLimit parses a raw limit, falling back to def when it is missing,
// not a number or below one, and capping it at max.
func SanitizeLimit(raw string, def, max int) int {
	n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(n) || n < 1 {
		return def
	}
	if n > float64(max) {
		return max
	}
	return int(n)
}

// SanitizeOffset parses a non-negative offset, zero when invalid.
func SanitizeOffset(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// NormalizeURL trims the value and adds an https scheme when it is missing.
// Blank input yields nil.
func NormalizeURL(val string) *string {
	s := strings.TrimSpace(val)
	if s == "" {
		return nil
	}
	switch {
	case schemeRe.MatchString(s):
	case strings.HasPrefix(s, "//"):
		s = "https:" + s
	default:
		s = "https://" + s
	}
	return &s
}

// IsWebURL accepts empty strings, absolute http(s) URLs and root-relative paths.
func IsWebURL(val string) bool {
	return val == "" ||
		strings.HasPrefix(val, "http://") ||
		strings.HasPrefix(val, "https://") ||
		strings.HasPrefix(val, "/")
}

// NullableString returns nil for blank input.
func NullableString(val string) *string {
	s := strings.TrimSpace(val)
	if s == "" {
		return nil
	}
	return &s
}

// Underscore converts a Go identifier to snake_case.
func Underscore(s string) string {
	s = acronymBoundry.ReplaceAllString(s, "${1}_${2}")
	s = camelBoundary.ReplaceAllString(s, "${1}_${2}")
	return strings.ToLower(strings.TrimFunc(s, func(r rune) bool { return r == '_' || unicode.IsSpace(r) }))
}
