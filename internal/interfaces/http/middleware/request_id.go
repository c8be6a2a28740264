package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/production-backend/internal/interfaces/http/response"
	"github.com/your-org/production-backend/internal/pkg/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestContext assigns a request id, echoes it back and attaches a
// request-scoped logger to the request context.
func RequestContext(log *logrus.Logger, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		c.Set(response.RequestIDKey, requestID)
		c.Set(response.VersionKey, version)
		c.Header(requestIDHeader, requestID)

		entry := log.WithField("request_id", requestID)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), entry))

		c.Next()
	}
}
