package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", MissingField("body"))
	appErr, ok := From(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeMissingField, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "body", appErr.Details["field"])

	_, ok = From(errors.New("disk full"))
	assert.False(t, ok)
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := ExternalError("slack", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "EXTERNAL_ERROR")
	assert.Equal(t, "slack", err.Details["service"])
}

func TestConstructorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		status int
	}{
		{"bad request", BadRequest("x"), http.StatusBadRequest},
		{"validation", ValidationFailed("x"), http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("f", "r"), http.StatusBadRequest},
		{"already exists", AlreadyExists("scenario"), http.StatusConflict},
		{"database", DatabaseError("count", nil), http.StatusInternalServerError},
		{"external", ExternalError("queue", nil), http.StatusBadGateway},
		{"unavailable", Unavailable("job queue"), http.StatusServiceUnavailable},
		{"internal", InternalWithError(errors.New("x")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.Status)
		})
	}
}

func TestCodeFor(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusNotFound, CodeNotFound},
		{http.StatusMethodNotAllowed, CodeMethodNotAllowed},
		{http.StatusRequestEntityTooLarge, CodePayloadTooLarge},
		{http.StatusTooManyRequests, CodeRateLimited},
		{http.StatusGatewayTimeout, CodeTimeout},
		{http.StatusInsufficientStorage, CodeInternalError},
		{http.StatusTeapot, CodeUnknown},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CodeFor(tt.status), "status %d", tt.status)
		if tt.want != CodeUnknown && tt.want != CodeInternalError {
			assert.Equal(t, tt.status, StatusOf(tt.want))
		}
	}
	assert.Equal(t, http.StatusInternalServerError, StatusOf("NO_SUCH_CODE"))
}
