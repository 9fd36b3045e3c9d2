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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupCartHandlerTest(t *testing.T) (*handlers.CartHandler, *mocks.CartService) {
	t.Helper()

	mockCartService := new(mocks.CartService)
	handler := handlers.NewCartHandler(mockCartService)

	return handler, mockCartService
}

func testCart() *models.Cart {
	return &models.Cart{
		ID:     1,
		UserID: 7,
		Items: map[string]models.CartItem{
			"3": {ProductID: 3, ProductName: "Paracetamol 500mg", Quantity: 2, UnitPrice: decimal.RequireFromString("5.50")},
		},
	}
}

func TestGetCartHandler(t *testing.T) {
	// Arrange
	handler, mockCartService := setupCartHandlerTest(t)

	mockCartService.On("GetCart", mock.Anything, int64(7)).Return(testCart(), nil).Once()

	req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/carts", nil, 7, models.RoleCustomer, nil)
	rec := httptest.NewRecorder()

	// Act
	handler.GetCart().ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	mockCartService.AssertExpectations(t)
}

func TestAddItemHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler, mockCartService := setupCartHandlerTest(t)

		mockCartService.On("AddItem", mock.Anything, int64(7), mock.AnythingOfType("*models.AddCartItemRequest")).Return(testCart(), nil).Once()

		body, _ := json.Marshal(models.AddCartItemRequest{ProductID: 3, Quantity: 2})
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/carts/items", bytes.NewReader(body), 7, models.RoleCustomer, nil)
		rec := httptest.NewRecorder()

		// Act
		handler.AddItem().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		mockCartService.AssertExpectations(t)
	})

	t.Run("Failure - Zero Quantity Rejected By Validation", func(t *testing.T) {
		// Arrange
		handler, mockCartService := setupCartHandlerTest(t)

		body, _ := json.Marshal(models.AddCartItemRequest{ProductID: 3, Quantity: 0})
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/carts/items", bytes.NewReader(body), 7, models.RoleCustomer, nil)
		rec := httptest.NewRecorder()

		// Act
		handler.AddItem().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockCartService.AssertNotCalled(t, "AddItem", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - Insufficient Stock", func(t *testing.T) {
		// Arrange
		handler, mockCartService := setupCartHandlerTest(t)

		mockCartService.On("AddItem", mock.Anything, int64(7), mock.AnythingOfType("*models.AddCartItemRequest")).
			Return(nil, appErrors.InsufficientStockError("Paracetamol 500mg", 1, 5)).Once()

		body, _ := json.Marshal(models.AddCartItemRequest{ProductID: 3, Quantity: 5})
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/carts/items", bytes.NewReader(body), 7, models.RoleCustomer, nil)
		rec := httptest.NewRecorder()

		// Act
		handler.AddItem().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestRemoveItemHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler, mockCartService := setupCartHandlerTest(t)

		mockCartService.On("RemoveItem", mock.Anything, int64(7), int64(3)).Return(testCart(), nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/carts/items/3", nil, 7, models.RoleCustomer, map[string]string{"productId": "3"})
		rec := httptest.NewRecorder()

		// Act
		handler.RemoveItem().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		mockCartService.AssertExpectations(t)
	})

	t.Run("Failure - Malformed Product Id", func(t *testing.T) {
		// Arrange
		handler, mockCartService := setupCartHandlerTest(t)

		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/carts/items/abc", nil, 7, models.RoleCustomer, map[string]string{"productId": "abc"})
		rec := httptest.NewRecorder()

		// Act
		handler.RemoveItem().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockCartService.AssertNotCalled(t, "RemoveItem", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestClearCartHandler(t *testing.T) {
	// Arrange
	handler, mockCartService := setupCartHandlerTest(t)

	mockCartService.On("ClearCart", mock.Anything, int64(7)).Return(nil).Once()

	req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/api/v1/carts", nil, 7, models.RoleCustomer, nil)
	rec := httptest.NewRecorder()

	// Act
	handler.ClearCart().ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
	mockCartService.AssertExpectations(t)
}
