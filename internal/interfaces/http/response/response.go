// Package response writes the JSON envelope shared by every API endpoint.
package response

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/logger"
)

// Context keys set by the request middleware
const (
	RequestIDKey = "request_id"
	VersionKey   = "api_version"
)

// Envelope is the body of every API response
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
	Meta    Meta        `json:"meta"`
}

// ErrorBody describes a failed call
type ErrorBody struct {
	Code    apperror.Code `json:"code"`
	Status  string        `json:"status"`
	Message string        `json:"message"`
	Details interface{}   `json:"details,omitempty"`
}

// Meta carries request bookkeeping
type Meta struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"requestId"`
	Version   string    `json:"version"`
}

func meta(c *gin.Context) Meta {
	return Meta{
		Timestamp: time.Now().UTC(),
		RequestID: c.GetString(RequestIDKey),
		Version:   c.GetString(VersionKey),
	}
}

// OK writes a 200 success envelope
func OK(c *gin.Context, data interface{}) {
	Success(c, http.StatusOK, data)
}

// Success writes a success envelope with the given status
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data, Meta: meta(c)})
}

// Error writes err as an error envelope and aborts the chain.
// Errors that are not *apperror.Error are logged and reported as SYS_INTERNAL_ERROR.
func Error(c *gin.Context, err error) {
	log := logger.FromContext(c.Request.Context())

	appErr, ok := apperror.As(err)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		log.WithError(err).Warn("Request deadline exceeded")
		appErr = apperror.New(apperror.CodeTimeout, "request timed out")
	case ok:
		if appErr.Code == apperror.CodeDatabaseError || appErr.Code == apperror.CodeInternal {
			log.WithError(err).WithField("code", appErr.Code).Error(appErr.Message)
		}
	default:
		log.WithError(err).Error("Unhandled error")
		appErr = apperror.New(apperror.CodeInternal, "internal server error")
	}

	c.AbortWithStatusJSON(appErr.Code.HTTPStatus(), Envelope{
		Success: false,
		Error: &ErrorBody{
			Code:    appErr.Code,
			Status:  appErr.Code.PlatformStatus(),
			Message: appErr.Message,
			Details: appErr.Details,
		},
		Meta: meta(c),
	})
}
