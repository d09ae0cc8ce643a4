package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDKey    = "request_id"
	RequestIDHeader = "X-Request-ID"
)

// RequestID is a Gin middleware that tags each incoming HTTP request with an identifier.
//
// Behavior:
//   - Reuses a valid UUID sent by the client in X-Request-ID (e.g. set by a proxy).
//   - Otherwise generates a new UUID (v4).
//   - Stores it in the Gin context under the key "request_id".
//   - Echoes it in the X-Request-ID response header.
//
// Usage:
//
//	router := gin.New()
//	router.Use(middleware.RequestID())
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Set(RequestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)

		c.Next()
	}
}
