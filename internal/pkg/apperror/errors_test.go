package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeMapping(t *testing.T) {
	cases := []struct {
		code     Code
		platform string
		status   int
	}{
		{CodeUnauthenticated, "unauthenticated", http.StatusUnauthorized},
		{CodePermissionDenied, "permission-denied", http.StatusForbidden},
		{CodeNotFound, "not-found", http.StatusNotFound},
		{CodeDuplicate, "already-exists", http.StatusConflict},
		{CodeInsufficientStock, "failed-precondition", http.StatusUnprocessableEntity},
		{CodeDatabaseError, "internal", http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), "internal", http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.platform, tc.code.PlatformStatus())
			assert.Equal(t, tc.status, tc.code.HTTPStatus())
		})
	}
}

func TestAsThroughWrapping(t *testing.T) {
	base := NotFound("fragrance %q not found", "F-001")
	wrapped := fmt.Errorf("update fragrance: %w", base)

	got, ok := As(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeNotFound, got.Code)
	assert.Equal(t, `fragrance "F-001" not found`, got.Message)
	assert.True(t, HasCode(wrapped, CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeNotFound))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Database(cause, "stocktake")

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, CodeDatabaseError, err.Code)
}

func TestWithDetailsCopies(t *testing.T) {
	base := New(CodeInvalidOperation, "batch rejected")
	withDetails := base.WithDetails([]string{"a"})

	assert.Nil(t, base.Details)
	assert.Equal(t, []string{"a"}, withDetails.Details)
}
