package middleware

import "github.com/gin-gonic/gin"

// SecurityHeadersMiddleware sets the response headers every API reply carries.
func SecurityHeadersMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		// listing photos under /uploads are rendered by the web client on another origin
		h.Set("Cross-Origin-Resource-Policy", "cross-origin")

		c.Next()
	}
}
