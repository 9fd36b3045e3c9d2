package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/farma-ya/pharmacy-platform/internal/api/handlers"
	appErrors "github.com/farma-ya/pharmacy-platform/internal/errors"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	"github.com/farma-ya/pharmacy-platform/internal/services/mocks"
	"github.com/farma-ya/pharmacy-platform/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupUserHandlerTest(t *testing.T) (*handlers.UserHandler, *mocks.UserService) {
	t.Helper()

	mockUserService := new(mocks.UserService)
	handler := handlers.NewUserHandler(mockUserService)

	return handler, mockUserService
}

func TestRegisterHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler, mockUserService := setupUserHandlerTest(t)

		user := &models.User{ID: 7, Username: "johndoe", Email: "john@example.com", RoleID: 2}
		mockUserService.On("Register", mock.Anything, mock.AnythingOfType("*models.RegisterRequest")).Return(user, nil).Once()

		body, _ := json.Marshal(models.RegisterRequest{Username: "johndoe", Email: "john@example.com", Password: "secret123"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register", bytes.NewReader(body), nil)
		rec := httptest.NewRecorder()

		// Act
		handler.Register().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rec.Code)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Invalid Email", func(t *testing.T) {
		// Arrange
		handler, mockUserService := setupUserHandlerTest(t)

		body, _ := json.Marshal(models.RegisterRequest{Username: "johndoe", Email: "not-an-email", Password: "secret123"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register", bytes.NewReader(body), nil)
		rec := httptest.NewRecorder()

		// Act
		handler.Register().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockUserService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Username Taken", func(t *testing.T) {
		// Arrange
		handler, mockUserService := setupUserHandlerTest(t)

		mockUserService.On("Register", mock.Anything, mock.AnythingOfType("*models.RegisterRequest")).
			Return(nil, appErrors.DuplicateEntryError("Username already registered")).Once()

		body, _ := json.Marshal(models.RegisterRequest{Username: "johndoe", Email: "john@example.com", Password: "secret123"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/register", bytes.NewReader(body), nil)
		rec := httptest.NewRecorder()

		// Act
		handler.Register().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestLoginHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler, mockUserService := setupUserHandlerTest(t)

		result := &models.LoginResponse{Success: true, Token: "signed-token", ExpiresIn: 3600, Role: models.RoleCustomer}
		mockUserService.On("Login", mock.Anything, mock.AnythingOfType("*models.LoginRequest")).Return(result, nil).Once()

		body, _ := json.Marshal(models.LoginRequest{Username: "johndoe", Password: "secret123"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body), nil)
		rec := httptest.NewRecorder()

		// Act
		handler.Login().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)

		var envelope struct {
			Success bool                 `json:"success"`
			Data    models.LoginResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
		assert.Equal(t, "signed-token", envelope.Data.Token)
	})

	t.Run("Failure - Rejected Credentials Return 401", func(t *testing.T) {
		// Arrange
		handler, mockUserService := setupUserHandlerTest(t)

		result := &models.LoginResponse{Success: false, Message: "Invalid username or password", RemainingTries: 3}
		mockUserService.On("Login", mock.Anything, mock.AnythingOfType("*models.LoginRequest")).Return(result, nil).Once()

		body, _ := json.Marshal(models.LoginRequest{Username: "johndoe", Password: "wrongpass"})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/users/login", bytes.NewReader(body), nil)
		rec := httptest.NewRecorder()

		// Act
		handler.Login().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var envelope struct {
			Success bool                 `json:"success"`
			Data    models.LoginResponse `json:"data"`
		}
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
		assert.False(t, envelope.Data.Success)
		assert.Equal(t, 3, envelope.Data.RemainingTries)
	})
}

func TestProfileHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler, mockUserService := setupUserHandlerTest(t)

		user := &models.User{ID: 7, Username: "johndoe", RoleID: 2}
		mockUserService.On("GetUserByID", mock.Anything, int64(7)).Return(user, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/users/profile", nil, 7, models.RoleCustomer, nil)
		rec := httptest.NewRecorder()

		// Act
		handler.Profile().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - No Claims", func(t *testing.T) {
		// Arrange
		handler, mockUserService := setupUserHandlerTest(t)

		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/api/v1/users/profile", nil, nil)
		rec := httptest.NewRecorder()

		// Act
		handler.Profile().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		mockUserService.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything)
	})
}

func TestListCouriersHandler(t *testing.T) {
	t.Run("Success - Admin", func(t *testing.T) {
		// Arrange
		handler, mockUserService := setupUserHandlerTest(t)

		couriers := []*models.User{{ID: 12, Username: "speedy", RoleID: 35}}
		mockUserService.On("ListCouriers", mock.Anything).Return(couriers, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/admin/couriers", nil, 1, models.RoleAdmin, nil)
		rec := httptest.NewRecorder()

		// Act
		handler.ListCouriers().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Customer Is Denied", func(t *testing.T) {
		// Arrange
		handler, mockUserService := setupUserHandlerTest(t)

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/admin/couriers", nil, 7, models.RoleCustomer, nil)
		rec := httptest.NewRecorder()

		// Act
		handler.ListCouriers().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, rec.Code)
		mockUserService.AssertNotCalled(t, "ListCouriers", mock.Anything)
	})
}
