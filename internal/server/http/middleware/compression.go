package middleware

import (
	"compress/gzip"
	"compress/zlib"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DecompressRequest inflates gzip and deflate request bodies. The inflated body
// is capped at maxBytes when maxBytes is positive.
func DecompressRequest(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			inflated io.ReadCloser
			err      error
		)
		switch strings.ToLower(strings.TrimSpace(c.GetHeader("Content-Encoding"))) {
		case "", "identity":
			c.Next()
			return
		case "gzip", "x-gzip":
			inflated, err = gzip.NewReader(c.Request.Body)
		case "deflate":
			inflated, err = zlib.NewReader(c.Request.Body)
		default:
			c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{"error": "Unsupported content encoding"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid compressed body"})
			return
		}

		original := c.Request.Body
		defer original.Close()
		defer inflated.Close()

		c.Request.Body = inflated
		if maxBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, inflated, maxBytes)
		}
		c.Request.Header.Del("Content-Encoding")
		c.Request.ContentLength = -1
		c.Next()
	}
}
