package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/production-backend/internal/pkg/apperror"
	"github.com/your-org/production-backend/internal/pkg/auth"
)

func newContext(body string, contentLength int64) *gin.Context {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/functions/test", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Request.ContentLength = contentLength
	return c
}

func TestBindPayload(t *testing.T) {
	type listPayload struct {
		Page int `json:"page"`
	}

	t.Run("empty body uses zero payload", func(t *testing.T) {
		var p listPayload
		require.NoError(t, bindPayload(newContext("", 0), &p))
		assert.Zero(t, p.Page)
	})

	t.Run("empty body still validates", func(t *testing.T) {
		var p idPayload
		err := bindPayload(newContext("", 0), &p)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
	})

	t.Run("decodes body", func(t *testing.T) {
		var p idPayload
		require.NoError(t, bindPayload(newContext(`{"id":7}`, 8), &p))
		assert.Equal(t, uint(7), p.ID)
	})

	t.Run("malformed json", func(t *testing.T) {
		var p idPayload
		err := bindPayload(newContext(`{"id":`, 6), &p)
		assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
	})

	t.Run("body over limit", func(t *testing.T) {
		c := newContext(`{"id":123456789}`, -1)
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, 4)
		var p idPayload
		err := bindPayload(c, &p)
		assert.True(t, apperror.HasCode(err, apperror.CodeFileTooLarge))
	})
}

func TestRequireJSONRejectsEmptyBody(t *testing.T) {
	c := newContext("", -1)
	c.Request.Body = http.NoBody
	var p idPayload
	err := requireJSON(c, &p)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidInput))
}

func TestInvokeWithoutActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	called := false
	fn := Callable{Name: "noop", Handle: func(*gin.Context, auth.Actor) (interface{}, error) {
		called = true
		return nil, nil
	}}

	r := gin.New()
	r.POST("/noop", Invoke(fn))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/noop", bytes.NewReader(nil)))

	assert.False(t, called)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), string(apperror.CodeUnauthenticated))
}
