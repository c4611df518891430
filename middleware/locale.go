package middleware

import (
	"strings"

	"github.com/free4fun/carbon-codex/helper"

	"github.com/gin-gonic/gin"
)

const (
	localeKey    = "locale"
	LocaleCookie = "locale"
)

// Locale resolves the request locale from the locale query parameter, the
// locale cookie, then Accept-Language, defaulting to English. The result
// is stored in the context and echoed in Content-Language.
func Locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		locale := DetectLocale(c)
		c.Set(localeKey, locale)
		c.Header("Content-Language", locale)
		c.Next()
	}
}

func DetectLocale(c *gin.Context) string {
	if q := strings.ToLower(strings.TrimSpace(c.Query("locale"))); helper.IsSupportedLocale(q) {
		return q
	}
	if cookie, err := c.Cookie(LocaleCookie); err == nil {
		if v := strings.ToLower(strings.TrimSpace(cookie)); helper.IsSupportedLocale(v) {
			return v
		}
	}
	return ParseAcceptLanguage(c.GetHeader("Accept-Language"))
}

// ParseAcceptLanguage returns the first supported language in header order.
// Quality values are not weighed.
func ParseAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		primary := strings.ToLower(strings.SplitN(tag, "-", 2)[0])
		if helper.IsSupportedLocale(primary) {
			return primary
		}
	}
	return helper.LocaleEN
}

// GetLocale returns the locale set by Locale, or English.
func GetLocale(c *gin.Context) string {
	if v := c.GetString(localeKey); v != "" {
		return v
	}
	return helper.LocaleEN
}
