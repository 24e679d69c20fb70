package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/piiguard/internal/errors"
	"github.com/allisson/piiguard/internal/pii"
	"github.com/allisson/piiguard/internal/user/domain"
	"github.com/allisson/piiguard/internal/user/http/dto"
	userUsecaseMocks "github.com/allisson/piiguard/internal/user/usecase/mocks"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func setupUserRouter(t *testing.T) (*gin.Engine, *userUsecaseMocks.MockUseCase) {
	t.Helper()
	mockUseCase := &userUsecaseMocks.MockUseCase{}
	t.Cleanup(func() { mockUseCase.AssertExpectations(t) })

	handler := NewUserHandler(mockUseCase, slog.New(slog.NewTextHandler(io.Discard, nil)))

	router := gin.New()
	users := router.Group("/v1/users")
	users.POST("", handler.RegisterHandler)
	users.POST("/lookup", handler.LookupHandler)
	users.GET("/availability", handler.AvailabilityHandler)
	users.GET("/:id", handler.GetHandler)
	users.PATCH("/:id/contact", handler.UpdateContactHandler)
	users.GET("/:id/profile", handler.GetProfileHandler)
	users.PUT("/:id/profile", handler.UpdateProfileHandler)

	return router, mockUseCase
}

func doJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleUser() *domain.User {
	return &domain.User{
		ID:                 uuid.Must(uuid.NewV7()),
		Email:              "awa@example.com",
		FirstName:          "Awa",
		LastName:           "Diop",
		Role:               domain.RoleCitizen,
		IsActive:           true,
		PhoneNumber:        "+221771234567",
		ConsularCardNumber: "SN1234567",
		CreatedAt:          time.Now().UTC(),
		UpdatedAt:          time.Now().UTC(),
	}
}

func TestUserHandler_RegisterHandler(t *testing.T) {
	t.Run("Success_Created", func(t *testing.T) {
		router, mockUseCase := setupUserRouter(t)
		user := sampleUser()

		mockUseCase.On("RegisterUser", mock.Anything, mock.MatchedBy(func(in *domain.RegisterUserInput) bool {
			return in.Email == "awa@example.com" && in.ConsularCardNumber == "sn1234567"
		})).Return(user, nil).Once()

		w := doJSON(router, http.MethodPost, "/v1/users", map[string]string{
			"email":                "awa@example.com",
			"password":             "SecurePass123!",
			"consular_card_number": "sn1234567",
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		var resp dto.UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, user.ID.String(), resp.ID)
		assert.Equal(t, "SN1234567", resp.ConsularCardNumber)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("Error_MalformedJSON", func(t *testing.T) {
		router, _ := setupUserRouter(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_MissingPassword", func(t *testing.T) {
		router, _ := setupUserRouter(t)

		w := doJSON(router, http.MethodPost, "/v1/users", map[string]string{"email": "awa@example.com"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, w.Body.String(), "password")
	})

	t.Run("Error_ConsularCardTaken", func(t *testing.T) {
		router, mockUseCase := setupUserRouter(t)

		mockUseCase.On("RegisterUser", mock.Anything, mock.Anything).
			Return(nil, domain.ErrConsularCardNumberTaken).Once()

		w := doJSON(router, http.MethodPost, "/v1/users", map[string]string{
			"email":                "awa@example.com",
			"password":             "SecurePass123!",
			"consular_card_number": "SN1234567",
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.NotContains(t, w.Body.String(), "SN1234567")
	})
}

func TestUserHandler_GetHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, mockUseCase := setupUserRouter(t)
		user := sampleUser()

		mockUseCase.On("GetUser", mock.Anything, user.ID).Return(user, nil).Once()

		w := doJSON(router, http.MethodGet, "/v1/users/"+user.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "+221771234567")
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		router, _ := setupUserRouter(t)

		w := doJSON(router, http.MethodGet, "/v1/users/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		router, mockUseCase := setupUserRouter(t)
		id := uuid.Must(uuid.NewV7())

		mockUseCase.On("GetUser", mock.Anything, id).Return(nil, domain.ErrUserNotFound).Once()

		w := doJSON(router, http.MethodGet, "/v1/users/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_EncryptionFailureIsOpaque", func(t *testing.T) {
		router, mockUseCase := setupUserRouter(t)
		id := uuid.Must(uuid.NewV7())

		mockUseCase.On("GetUser", mock.Anything, id).
			Return(nil, errors.New("failed to decrypt phone_number: key unavailable")).Once()

		w := doJSON(router, http.MethodGet, "/v1/users/"+id.String(), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "phone_number")
	})
}

func TestUserHandler_UpdateContactHandler(t *testing.T) {
	t.Run("Success_ClearCard", func(t *testing.T) {
		router, mockUseCase := setupUserRouter(t)
		user := sampleUser()
		user.ConsularCardNumber = ""
		user.IsActive = false

		mockUseCase.On("UpdateContact", mock.Anything, user.ID, mock.MatchedBy(func(in *domain.UpdateContactInput) bool {
			return in.PhoneNumber == nil && in.ConsularCardNumber != nil && *in.ConsularCardNumber == ""
		})).Return(user, nil).Once()

		w := doJSON(router, http.MethodPatch, "/v1/users/"+user.ID.String()+"/contact",
			map[string]string{"consular_card_number": ""})

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.UserResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.IsActive)
	})

	t.Run("Error_EmptyBody", func(t *testing.T) {
		router, _ := setupUserRouter(t)

		w := doJSON(router, http.MethodPatch, "/v1/users/"+uuid.Must(uuid.NewV7()).String()+"/contact",
			map[string]string{})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestUserHandler_ProfileHandlers(t *testing.T) {
	t.Run("Success_GetProfile", func(t *testing.T) {
		router, mockUseCase := setupUserRouter(t)
		userID := uuid.Must(uuid.NewV7())

		mockUseCase.On("GetProfile", mock.Anything, userID).
			Return(&domain.Profile{UserID: userID, PassportNumber: "A1234567"}, nil).Once()

		w := doJSON(router, http.MethodGet, "/v1/users/"+userID.String()+"/profile", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var resp dto.ProfileResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "A1234567", resp.PassportNumber)
	})

	t.Run("Success_UpdateProfile", func(t *testing.T) {
		router, mockUseCase := setupUserRouter(t)
		userID := uuid.Must(uuid.NewV7())

		mockUseCase.On("UpdateProfile", mock.Anything, userID, mock.MatchedBy(func(p *domain.Profile) bool {
			return p.DateOfBirth != nil && p.PassportNumber == "a 1234 567"
		})).Return(&domain.Profile{UserID: userID, PassportNumber: "A1234567", IsProfileComplete: true}, nil).Once()

		w := doJSON(router, http.MethodPut, "/v1/users/"+userID.String()+"/profile", map[string]string{
			"date_of_birth":   "1990-05-17",
			"passport_number": "a 1234 567",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"is_profile_complete":true`)
	})

	t.Run("Error_InvalidDate", func(t *testing.T) {
		router, _ := setupUserRouter(t)

		w := doJSON(router, http.MethodPut, "/v1/users/"+uuid.Must(uuid.NewV7()).String()+"/profile",
			map[string]string{"date_of_birth": "yesterday"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_PassportTaken", func(t *testing.T) {
		router, mockUseCase := setupUserRouter(t)
		userID := uuid.Must(uuid.NewV7())

		mockUseCase.On("UpdateProfile", mock.Anything, userID, mock.Anything).
			Return(nil, domain.ErrPassportNumberTaken).Once()

		w := doJSON(router, http.MethodPut, "/v1/users/"+userID.String()+"/profile",
			map[string]string{"passport_number": "A1234567"})

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestUserHandler_LookupHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		router, mockUseCase := setupUserRouter(t)
		user := sampleUser()

		mockUseCase.On("FindByConsularCardNumber", mock.Anything, "sn1234567").Return(user, nil).Once()

		w := doJSON(router, http.MethodPost, "/v1/users/lookup", map[string]string{"consular_card_number": "sn1234567"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), user.ID.String())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		router, mockUseCase := setupUserRouter(t)

		mockUseCase.On("FindByConsularCardNumber", mock.Anything, "SN0000000").
			Return(nil, domain.ErrUserNotFound).Once()

		w := doJSON(router, http.MethodPost, "/v1/users/lookup", map[string]string{"consular_card_number": "SN0000000"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_Missing", func(t *testing.T) {
		router, _ := setupUserRouter(t)

		w := doJSON(router, http.MethodPost, "/v1/users/lookup", map[string]string{})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestUserHandler_AvailabilityHandler(t *testing.T) {
	t.Run("Success_Available", func(t *testing.T) {
		router, mockUseCase := setupUserRouter(t)

		mockUseCase.On("CheckAvailability", mock.Anything, "passport_number", "A1234567").Return(true, nil).Once()

		w := doJSON(router, http.MethodGet, "/v1/users/availability?kind=passport_number&value=A1234567", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"kind":"passport_number","available":true}`, w.Body.String())
	})

	t.Run("Error_NonUniqueKind", func(t *testing.T) {
		router, mockUseCase := setupUserRouter(t)

		mockUseCase.On("CheckAvailability", mock.Anything, "phone_number", "+221771234567").
			Return(false, domain.ErrLookupNotSupported).Once()

		w := doJSON(router, http.MethodGet, "/v1/users/availability?kind=phone_number&value=%2B221771234567", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("Error_UnknownKind", func(t *testing.T) {
		router, mockUseCase := setupUserRouter(t)

		mockUseCase.On("CheckAvailability", mock.Anything, "email", "a@example.com").
			Return(false, pii.ErrUnknownKind).Once()

		w := doJSON(router, http.MethodGet, "/v1/users/availability?kind=email&value=a@example.com", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.True(t, apperrors.Is(pii.ErrUnknownKind, apperrors.ErrInvalidInput))
	})

	t.Run("Error_MissingValue", func(t *testing.T) {
		router, _ := setupUserRouter(t)

		w := doJSON(router, http.MethodGet, "/v1/users/availability?kind=passport_number", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}
