package middleware

import (
	"net/http"
	"strings"

	"pet-adoption-marketplace/pkg/utils"

	"github.com/gin-gonic/gin"
)

const (
	DefaultMaxRequestSize = 10 << 20
)

// RequestSizeLimitMiddleware caps request bodies. Multipart bodies carry
// photos and get their own, larger cap.
func RequestSizeLimitMiddleware(maxSize, maxMultipartSize int64) gin.HandlerFunc {
	if maxSize <= 0 {
		maxSize = DefaultMaxRequestSize
	}
	if maxMultipartSize < maxSize {
		maxMultipartSize = maxSize
	}

	return func(c *gin.Context) {
		limit := maxSize
		if strings.HasPrefix(c.ContentType(), "multipart/") {
			limit = maxMultipartSize
		}

		if c.Request.ContentLength > limit {
			utils.ErrorResponse(c, http.StatusRequestEntityTooLarge, "Request body too large")
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
