package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/farma-ya/pharmacy-platform/internal/api/handlers"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	"github.com/farma-ya/pharmacy-platform/internal/services/mocks"
	"github.com/farma-ya/pharmacy-platform/internal/testutils"
	"github.com/farma-ya/pharmacy-platform/internal/utils/response"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupOrderHandlerTest(t *testing.T) (*handlers.OrderHandler, *mocks.OrderService, *mocks.UserService) {
	t.Helper()

	mockOrderService := new(mocks.OrderService)
	mockUserService := new(mocks.UserService)

	handler := handlers.NewOrderHandler(mockOrderService, mockUserService)

	return handler, mockOrderService, mockUserService
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) response.APIResponse {
	t.Helper()

	var envelope response.APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))

	return envelope
}

func TestCheckout(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler, mockOrderService, mockUserService := setupOrderHandlerTest(t)

		user := &models.User{ID: 7, Username: "johndoe", Email: "john@example.com", RoleID: 2}
		order := &models.Order{ID: 5, OrderNumber: "PED1700000000000123", UserID: 7, Status: models.OrderStatusPending, Total: decimal.RequireFromString("25.00")}

		mockUserService.On("GetUserByID", mock.Anything, int64(7)).Return(user, nil).Once()
		mockOrderService.On("CreateOrderFromCart", mock.Anything, user, mock.AnythingOfType("*models.CheckoutRequest")).Return(order, nil).Once()

		body, _ := json.Marshal(models.CheckoutRequest{ShippingAddress: "Av. Arequipa 1234", ShippingDistrict: "Lince"})
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/orders", bytes.NewReader(body), 7, models.RoleCustomer, nil)
		rec := httptest.NewRecorder()

		// Act
		handler.Checkout().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rec.Code)

		envelope := decodeResponse(t, rec)
		assert.True(t, envelope.Success)

		mockOrderService.AssertExpectations(t)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - No Claims", func(t *testing.T) {
		// Arrange
		handler, mockOrderService, _ := setupOrderHandlerTest(t)

		body, _ := json.Marshal(models.CheckoutRequest{})
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/api/v1/orders", bytes.NewReader(body), nil)
		rec := httptest.NewRecorder()

		// Act
		handler.Checkout().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		mockOrderService.AssertNotCalled(t, "CreateOrderFromCart", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetOrder(t *testing.T) {
	courierID := int64(12)

	order := &models.Order{ID: 5, OrderNumber: "PED1700000000000123", UserID: 7, CourierID: &courierID, Status: models.OrderStatusProcessing}

	cases := []struct {
		name       string
		userID     int64
		role       models.Role
		wantStatus int
	}{
		{"Owner Can View", 7, models.RoleCustomer, http.StatusOK},
		{"Admin Can View", 1, models.RoleAdmin, http.StatusOK},
		{"Assigned Courier Can View", 12, models.RoleCourier, http.StatusOK},
		{"Other Customer Is Denied", 8, models.RoleCustomer, http.StatusForbidden},
		{"Other Courier Is Denied", 13, models.RoleCourier, http.StatusForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			handler, mockOrderService, _ := setupOrderHandlerTest(t)

			mockOrderService.On("GetOrderByID", mock.Anything, int64(5)).Return(order, nil).Once()

			req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/orders/5", nil, tc.userID, tc.role, map[string]string{"id": "5"})
			rec := httptest.NewRecorder()

			// Act
			handler.GetOrder().ServeHTTP(rec, req)

			// Assert
			assert.Equal(t, tc.wantStatus, rec.Code)

			envelope := decodeResponse(t, rec)
			assert.Equal(t, tc.wantStatus == http.StatusOK, envelope.Success)
		})
	}
}

func TestListMyOrders(t *testing.T) {
	// Arrange
	handler, mockOrderService, _ := setupOrderHandlerTest(t)

	orders := []models.Order{
		{ID: 5, UserID: 7, Status: models.OrderStatusShipped},
		{ID: 6, UserID: 7, Status: models.OrderStatusPending},
	}

	mockOrderService.On("ListOrdersByUser", mock.Anything, int64(7)).Return(orders, nil).Once()

	req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/orders", nil, 7, models.RoleCustomer, nil)
	rec := httptest.NewRecorder()

	// Act
	handler.ListMyOrders().ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Success bool           `json:"success"`
		Data    []models.Order `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	require.Len(t, envelope.Data, 2)

	// Customers never see the internal shipped state.
	assert.Equal(t, models.OrderStatusDelivered, envelope.Data[0].Status)
	assert.Equal(t, models.OrderStatusPending, envelope.Data[1].Status)

	// The stored slice is untouched.
	assert.Equal(t, models.OrderStatusShipped, orders[0].Status)
}

func TestListAllOrders(t *testing.T) {
	t.Run("Failure - Customer Is Denied", func(t *testing.T) {
		// Arrange
		handler, mockOrderService, _ := setupOrderHandlerTest(t)

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/admin/orders", nil, 7, models.RoleCustomer, nil)
		rec := httptest.NewRecorder()

		// Act
		handler.ListAllOrders().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, rec.Code)
		mockOrderService.AssertNotCalled(t, "ListAllOrders", mock.Anything)
	})
}

func TestUpdateDeliveryStatus(t *testing.T) {
	t.Run("Success - Assigned Courier", func(t *testing.T) {
		// Arrange
		handler, mockOrderService, _ := setupOrderHandlerTest(t)

		courierID := int64(12)
		order := &models.Order{ID: 5, UserID: 7, CourierID: &courierID, Status: models.OrderStatusProcessing}
		updated := &models.Order{ID: 5, UserID: 7, CourierID: &courierID, Status: models.OrderStatusDelivered}

		mockOrderService.On("GetOrderByID", mock.Anything, int64(5)).Return(order, nil).Once()
		mockOrderService.On("UpdateOrderStatus", mock.Anything, int64(5), "DELIVERED").Return(updated, nil).Once()

		body, _ := json.Marshal(models.UpdateOrderStatusRequest{Status: "DELIVERED"})
		req := testutils.CreateTestRequestWithContext(http.MethodPatch, "/api/v1/courier/orders/5/status", bytes.NewReader(body), 12, models.RoleCourier, map[string]string{"id": "5"})
		rec := httptest.NewRecorder()

		// Act
		handler.UpdateDeliveryStatus().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		mockOrderService.AssertExpectations(t)
	})

	t.Run("Failure - Order Assigned To Someone Else", func(t *testing.T) {
		// Arrange
		handler, mockOrderService, _ := setupOrderHandlerTest(t)

		otherCourier := int64(13)
		order := &models.Order{ID: 5, UserID: 7, CourierID: &otherCourier, Status: models.OrderStatusProcessing}

		mockOrderService.On("GetOrderByID", mock.Anything, int64(5)).Return(order, nil).Once()

		body, _ := json.Marshal(models.UpdateOrderStatusRequest{Status: "DELIVERED"})
		req := testutils.CreateTestRequestWithContext(http.MethodPatch, "/api/v1/courier/orders/5/status", bytes.NewReader(body), 12, models.RoleCourier, map[string]string{"id": "5"})
		rec := httptest.NewRecorder()

		// Act
		handler.UpdateDeliveryStatus().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, rec.Code)
		mockOrderService.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - Unassigned Order", func(t *testing.T) {
		// Arrange
		handler, mockOrderService, _ := setupOrderHandlerTest(t)

		order := &models.Order{ID: 5, UserID: 7, Status: models.OrderStatusPending}

		mockOrderService.On("GetOrderByID", mock.Anything, int64(5)).Return(order, nil).Once()

		body, _ := json.Marshal(models.UpdateOrderStatusRequest{Status: "DELIVERED"})
		req := testutils.CreateTestRequestWithContext(http.MethodPatch, "/api/v1/courier/orders/5/status", bytes.NewReader(body), 12, models.RoleCourier, map[string]string{"id": "5"})
		rec := httptest.NewRecorder()

		// Act
		handler.UpdateDeliveryStatus().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestAssignCourierHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		handler, mockOrderService, _ := setupOrderHandlerTest(t)

		courierID := int64(12)
		order := &models.Order{ID: 5, UserID: 7, CourierID: &courierID, Status: models.OrderStatusProcessing}

		mockOrderService.On("AssignCourier", mock.Anything, int64(5), int64(12)).Return(order, nil).Once()

		body, _ := json.Marshal(models.AssignCourierRequest{CourierID: 12})
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/admin/orders/5/courier", bytes.NewReader(body), 1, models.RoleAdmin, map[string]string{"id": "5"})
		rec := httptest.NewRecorder()

		// Act
		handler.AssignCourier().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusOK, rec.Code)
		mockOrderService.AssertExpectations(t)
	})

	t.Run("Failure - Courier Role Cannot Assign", func(t *testing.T) {
		// Arrange
		handler, mockOrderService, _ := setupOrderHandlerTest(t)

		body, _ := json.Marshal(models.AssignCourierRequest{CourierID: 12})
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/api/v1/admin/orders/5/courier", bytes.NewReader(body), 12, models.RoleCourier, map[string]string{"id": "5"})
		rec := httptest.NewRecorder()

		// Act
		handler.AssignCourier().ServeHTTP(rec, req)

		// Assert
		assert.Equal(t, http.StatusForbidden, rec.Code)
		mockOrderService.AssertNotCalled(t, "AssignCourier", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGetDeliveryStatsHandler(t *testing.T) {
	// Arrange
	handler, mockOrderService, _ := setupOrderHandlerTest(t)

	stats := &models.DeliveryStats{Pending: 2, InProcess: 1, Delivered: 5, TodaysEarnings: decimal.RequireFromString("150.00")}
	mockOrderService.On("GetDeliveryStats", mock.Anything, int64(12)).Return(stats, nil).Once()

	req := testutils.CreateTestRequestWithContext(http.MethodGet, "/api/v1/courier/stats", nil, 12, models.RoleCourier, nil)
	rec := httptest.NewRecorder()

	// Act
	handler.GetDeliveryStats().ServeHTTP(rec, req)

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeResponse(t, rec)
	assert.True(t, envelope.Success)
	mockOrderService.AssertExpectations(t)
}
