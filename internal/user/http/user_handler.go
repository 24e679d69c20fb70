// Package http provides HTTP handlers for user and profile operations.
// Sensitive attributes are accepted and returned in clear; encryption happens below
// the use case.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/allisson/piiguard/internal/httputil"
	"github.com/allisson/piiguard/internal/user/http/dto"
	"github.com/allisson/piiguard/internal/user/usecase"
	customValidation "github.com/allisson/piiguard/internal/validation"
)

// UserHandler handles HTTP requests for users and their profiles.
type UserHandler struct {
	userUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler with required dependencies.
func NewUserHandler(userUseCase usecase.UseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// RegisterHandler creates an account and its empty profile.
// POST /v1/users - Returns 201 Created.
func (h *UserHandler) RegisterHandler(c *gin.Context) {
	var req dto.RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.RegisterUser(c.Request.Context(), dto.ToRegisterUserInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserToResponse(user))
}

// GetHandler returns a user with decrypted contact attributes.
// GET /v1/users/:id - Returns 200 OK.
func (h *UserHandler) GetHandler(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	user, err := h.userUseCase.GetUser(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// UpdateContactHandler replaces the phone number and/or consular card number.
// PATCH /v1/users/:id/contact - Returns 200 OK with the updated user.
func (h *UserHandler) UpdateContactHandler(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	user, err := h.userUseCase.UpdateContact(c.Request.Context(), userID, dto.ToUpdateContactInput(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// GetProfileHandler returns the profile of a user.
// GET /v1/users/:id/profile - Returns 200 OK.
func (h *UserHandler) GetProfileHandler(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	profile, err := h.userUseCase.GetProfile(c.Request.Context(), userID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapProfileToResponse(profile))
}

// UpdateProfileHandler replaces the profile of a user.
// PUT /v1/users/:id/profile - Returns 200 OK with the stored profile.
func (h *UserHandler) UpdateProfileHandler(c *gin.Context) {
	userID, ok := h.parseUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	profile, err := h.userUseCase.UpdateProfile(c.Request.Context(), userID, dto.ToProfile(req))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapProfileToResponse(profile))
}

// LookupHandler finds a user by consular card number through its digest.
// POST /v1/users/lookup - Returns 200 OK or 404 Not Found.
func (h *UserHandler) LookupHandler(c *gin.Context) {
	var req dto.LookupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.FindByConsularCardNumber(c.Request.Context(), req.ConsularCardNumber)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// AvailabilityHandler reports whether a value of a unique attribute is still free.
// GET /v1/users/availability?kind=passport_number&value=... - Returns 200 OK.
func (h *UserHandler) AvailabilityHandler(c *gin.Context) {
	req := dto.AvailabilityRequest{
		Kind:  c.Query("kind"),
		Value: c.Query("value"),
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	available, err := h.userUseCase.CheckAvailability(c.Request.Context(), req.Kind, req.Value)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.AvailabilityResponse{Kind: req.Kind, Available: available})
}

func (h *UserHandler) parseUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleBadRequestGin(c, fmt.Errorf("invalid user id: %w", err), h.logger)
		return uuid.Nil, false
	}
	return userID, true
}
