package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIKey guards a route group with a static X-API-Key header check. An empty
// expected key disables the check, which is the development default.
func APIKey(expected string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if expected == "" {
			c.Next()
			return
		}

		key := c.GetHeader("X-API-Key")
		if key == "" || key != expected {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"ok":    false,
				"error": "invalid API key",
			})
			return
		}

		c.Next()
	}
}
