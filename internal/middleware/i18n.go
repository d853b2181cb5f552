// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/i18n"
)

// I18nMiddleware picks the first supported language from Accept-Language,
// e.g. "hi-IN,hi;q=0.9,en;q=0.8" selects hi.
func I18nMiddleware(defaultLang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", negotiate(c.GetHeader("Accept-Language"), defaultLang))
		c.Next()
	}
}

func negotiate(header, fallback string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.Split(part, ";")[0])
		if tag == "" {
			continue
		}
		base, _, _ := strings.Cut(strings.ReplaceAll(tag, "_", "-"), "-")
		if base = strings.ToLower(base); i18n.IsSupported(base) {
			return base
		}
	}
	return fallback
}
