package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// BodySizeLimitMiddleware caps request bodies at maxBodySize. Routes listed in
// overrides (by route template, e.g. "/instructor/upload") get their own cap.
func BodySizeLimitMiddleware(maxBodySize int64, overrides map[string]int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		limit := maxBodySize
		if override, ok := overrides[c.FullPath()]; ok {
			limit = override
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
