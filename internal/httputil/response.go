// Package httputil writes the JSON error bodies shared by every handler.
package httputil

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/piiguard/internal/errors"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// errorMapping ties a sentinel to its response. An empty message exposes err.Error().
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "The requested resource was not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "A conflict occurred with existing data"},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication is required"},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden", "You don't have permission to access this resource"},
}

var internalError = ErrorResponse{Error: "internal_error", Message: "An internal error occurred"}

func resolve(err error) (int, ErrorResponse) {
	for _, m := range errorMappings {
		if !apperrors.Is(err, m.target) {
			continue
		}
		message := m.message
		if message == "" {
			message = err.Error()
		}
		return m.status, ErrorResponse{Error: m.code, Message: message}
	}
	return http.StatusInternalServerError, internalError
}

// HandleErrorGin writes the response for a use case error. Only invalid input keeps
// its message; anything unmapped, encryption failures included, becomes a generic
// 500. The full error is always logged, at error level for 5xx and warn otherwise.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status, body := resolve(err)

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed",
			slog.Int("status_code", status),
			slog.String("error_code", body.Error),
			slog.Any("error", err),
		)
	}

	c.JSON(status, body)
}

// HandleBadRequestGin answers 400 for a body or parameter that could not be bound.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusBadRequest, "bad_request", "bad request", err, logger)
}

// HandleValidationErrorGin answers 422 for a request that failed its rules.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	writeClientError(c, http.StatusUnprocessableEntity, "validation_error", "validation failed", err, logger)
}

func writeClientError(c *gin.Context, status int, code, msg string, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn(msg, slog.Any("error", err))
	}
	c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}
