package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CacheControl lets clients reuse catalog reads for maxAgeSeconds.
// Responses vary by Authorization, so shared caches must not store them.
func CacheControl(maxAgeSeconds int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet && maxAgeSeconds > 0 {
			c.Header("Cache-Control", fmt.Sprintf("private, max-age=%d", maxAgeSeconds))
		} else {
			c.Header("Cache-Control", "no-store")
		}
		c.Next()
	}
}
