package middleware

import (
	"net/http"
	"strings"

	"github.com/fitforge/fitforge-web/pkg/jwt"
	"github.com/fitforge/fitforge-web/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// MetricsTokenHeader carries the scrape token when bearer auth is not used
const MetricsTokenHeader = "X-Metrics-Token"

// TokenAuthMiddleware guards machine endpoints such as /api/metrics. The token
// comes from MetricsTokenHeader or an Authorization bearer header. With no
// valid tokens configured the endpoint is open.
func TokenAuthMiddleware(validTokens ...string) gin.HandlerFunc {
	configured := make([]string, 0, len(validTokens))
	for _, t := range validTokens {
		if t != "" {
			configured = append(configured, t)
		}
	}

	return func(c *gin.Context) {
		if len(configured) == 0 {
			c.Next()
			return
		}

		token := c.GetHeader(MetricsTokenHeader)
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}

		if token == "" {
			logger.Warn("Missing authentication token",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()),
			)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authentication token"})
			c.Abort()
			return
		}

		for _, validToken := range configured {
			if jwt.TimingSafeCompare(token, validToken) {
				c.Next()
				return
			}
		}

		logger.Warn("Invalid authentication token",
			zap.String("path", c.Request.URL.Path),
			zap.String("client_ip", c.ClientIP()),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication token"})
		c.Abort()
	}
}
