package middleware

import (
	"github.com/gin-gonic/gin"
)

// contentSecurityPolicy allows the pages' own assets and the course videos,
// which may be hosted anywhere
const contentSecurityPolicy = "default-src 'self'; img-src 'self' data: https:; media-src 'self' https:; " +
	"style-src 'self' 'unsafe-inline'; script-src 'self'; frame-ancestors 'none'; form-action 'self'"

// SecurityHeadersMiddleware adds security headers to all HTTP responses
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=(), interest-cohort=()")
		c.Header("Content-Security-Policy", contentSecurityPolicy)

		// Pages carry per-visitor state (balance, purchases); never cache them
		c.Header("Cache-Control", "no-store, no-cache, must-revalidate, private")
		c.Header("Pragma", "no-cache")

		c.Next()
	}
}
