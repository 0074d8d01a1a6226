package response

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ContextKeyRequestID is the Gin context key under which the request ID is
// stored for the response envelope's metadata.
const ContextKeyRequestID = "request_id"

// requestIDHeader is the header the ID is read from and echoed back on.
const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware tags every request with an ID: the caller's
// X-Request-ID when supplied, a fresh UUID otherwise. The ID travels into
// the response metadata and back out as a header so a client can correlate
// its own logs with the server's.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Set(ContextKeyRequestID, reqID)
		c.Header(requestIDHeader, reqID)
		c.Next()
	}
}
