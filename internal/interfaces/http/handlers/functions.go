// internal/interfaces/http/handlers/functions.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/your-org/production-backend/internal/interfaces/http/middleware"
	"github.com/your-org/production-backend/internal/interfaces/http/response"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/auth"
	"github.com/your-org/production-backend/internal/pkg/metrics"
)

// Callable is one POST /functions/<name> operation
type Callable struct {
	Name    string
	MinRole auth.Role
	Handle  func(c *gin.Context, actor auth.Actor) (interface{}, error)
}

// Invoke runs fn for the authenticated caller and writes the envelope
func Invoke(fn Callable) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := middleware.ActorFromContext(c)
		if !ok {
			response.Error(c, apperror.New(apperror.CodeUnauthenticated, "authentication required"))
			return
		}

		data, err := fn.Handle(c, actor)
		if err != nil {
			code := apperror.CodeInternal
			if appErr, ok := apperror.As(err); ok {
				code = appErr.Code
			}
			metrics.FunctionCallsTotal.WithLabelValues(fn.Name, string(code)).Inc()
			response.Error(c, err)
			return
		}

		metrics.FunctionCallsTotal.WithLabelValues(fn.Name, "OK").Inc()
		response.OK(c, data)
	}
}

// bindPayload decodes the JSON body into dst. An empty body is validated as
// the zero payload.
func bindPayload(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return validatePayload(dst)
	}
	err := bindJSON(c, dst)
	if errors.Is(err, io.EOF) {
		return validatePayload(dst)
	}
	return err
}

func validatePayload(dst interface{}) error {
	if err := binding.Validator.ValidateStruct(dst); err != nil {
		return apperror.InvalidInput("invalid request payload").WithDetails(err.Error())
	}
	return nil
}

// bindJSON decodes and validates a JSON body. io.EOF is returned unwrapped
// when the body is empty.
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return err
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.New(apperror.CodeFileTooLarge, "request body exceeds %d bytes", tooLarge.Limit)
		}
		return apperror.InvalidInput("invalid request payload").WithDetails(err.Error())
	}
	return nil
}

// idPayload addresses a single record
type idPayload struct {
	ID uint `json:"id" binding:"required"`
}
