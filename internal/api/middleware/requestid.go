package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/latexbot/internal/shared/id"
)

const (
	// RequestIDHeader carries the request ID in both directions
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID tags every request with an ID, reusing a valid one sent by the
// client, and echoes it in the response.
func RequestID(gen *id.Generator) gin.HandlerFunc {
	if gen == nil {
		gen = id.Default()
	}
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if !id.IsValid(rid) {
			rid = gen.GenerateWithPrefix(id.RequestPrefix)
		}
		c.Set(requestIDKey, rid)
		c.Header(RequestIDHeader, rid)
		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestID, or "" outside it.
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
