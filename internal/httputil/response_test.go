package httputil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/piiguard/internal/crypto/domain"
	apperrors "github.com/allisson/piiguard/internal/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		statusCode int
		errorCode  string
		message    string
	}{
		{
			name:       "not found",
			err:        apperrors.Wrap(apperrors.ErrNotFound, "user not found"),
			statusCode: http.StatusNotFound,
			errorCode:  "not_found",
			message:    "The requested resource was not found",
		},
		{
			name:       "conflict",
			err:        apperrors.Wrap(apperrors.ErrConflict, "passport number already registered"),
			statusCode: http.StatusConflict,
			errorCode:  "conflict",
			message:    "A conflict occurred with existing data",
		},
		{
			name:       "invalid input exposes message",
			err:        apperrors.Wrap(apperrors.ErrInvalidInput, "phone_number: invalid format"),
			statusCode: http.StatusUnprocessableEntity,
			errorCode:  "invalid_input",
			message:    "phone_number: invalid format: invalid input",
		},
		{
			name:       "forbidden",
			err:        apperrors.ErrForbidden,
			statusCode: http.StatusForbidden,
			errorCode:  "forbidden",
			message:    "You don't have permission to access this resource",
		},
		{
			name:       "internal hides details",
			err:        fmt.Errorf("failed to encrypt passport_number: %w", apperrors.ErrInternal),
			statusCode: http.StatusInternalServerError,
			errorCode:  "internal_error",
			message:    "An internal error occurred",
		},
		{
			name:       "undecryptable stored value hides details",
			err:        fmt.Errorf("failed to open passport_number: %w: authentication failed", cryptoDomain.ErrInvalidToken),
			statusCode: http.StatusInternalServerError,
			errorCode:  "internal_error",
			message:    "An internal error occurred",
		},
		{
			name:       "unknown error",
			err:        errors.New("pq: connection refused"),
			statusCode: http.StatusInternalServerError,
			errorCode:  "internal_error",
			message:    "An internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleErrorGin(c, tt.err, nil)

			assert.Equal(t, tt.statusCode, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.errorCode, resp.Error)
			assert.Equal(t, tt.message, resp.Message)
		})
	}

	t.Run("nil error writes nothing", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		HandleErrorGin(c, nil, nil)

		assert.Empty(t, w.Body.String())
	})
}

func TestHandleErrorGin_LogLevel(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		level string
	}{
		{name: "client error", err: apperrors.Wrap(apperrors.ErrNotFound, "user not found"), level: "WARN"},
		{name: "server error", err: errors.New("pq: connection refused"), level: "ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleErrorGin(c, tt.err, slog.New(slog.NewJSONHandler(&logs, nil)))

			var entry map[string]any
			require.NoError(t, json.Unmarshal(logs.Bytes(), &entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, tt.err.Error(), entry["error"])
		})
	}
}

func TestHandleBadRequestGin(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleBadRequestGin(c, errors.New("unexpected EOF"), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "bad_request", resp.Error)
	assert.Equal(t, "unexpected EOF", resp.Message)
}

func TestHandleValidationErrorGin(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleValidationErrorGin(c, errors.New("kind: cannot be blank"), nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "validation_error", resp.Error)
	assert.Equal(t, "kind: cannot be blank", resp.Message)
}
