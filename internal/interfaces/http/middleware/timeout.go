package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/production-backend/internal/interfaces/http/response"
)

// Timeout bounds the request context. Handlers pass the context to the
// database, so a stuck query is cancelled and reported as SYS_TIMEOUT.
func Timeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if !c.Writer.Written() && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			response.Error(c, context.DeadlineExceeded)
		}
	}
}
