package handlers

import (
	"log/slog"
	"net/http"

	"github.com/farma-ya/pharmacy-platform/internal/api/middleware"
	"github.com/farma-ya/pharmacy-platform/internal/errors"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	service "github.com/farma-ya/pharmacy-platform/internal/services"
	"github.com/farma-ya/pharmacy-platform/internal/utils"
	"github.com/farma-ya/pharmacy-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type OrderHandler struct {
	orderService service.OrderService
	userService  service.UserService
	validator    *validator.Validate
}

func NewOrderHandler(orderService service.OrderService, userService service.UserService) *OrderHandler {
	return &OrderHandler{orderService: orderService, userService: userService, validator: validator.New()}
}

func (h *OrderHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req models.CheckoutRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid checkout input")
			return
		}

		user, err := h.userService.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to load user for checkout", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		order, err := h.orderService.CreateOrderFromCart(r.Context(), user, &req)
		if err != nil {
			logger.Error("Checkout failed", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Order created", slog.String("orderNumber", order.OrderNumber))
		response.Success(w, http.StatusCreated, order)
	}
}

// GetOrder is visible to the order's owner, an admin, or the assigned
// courier.
func (h *OrderHandler) GetOrder() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		order, err := h.orderService.GetOrderByID(r.Context(), id)
		if err != nil {
			logger.Warn("Failed to get order", slog.Int64("orderId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		if !canViewOrder(claims, order) {
			logger.Warn("Order access denied", slog.Int64("orderId", id))
			response.Error(w, errors.ForbiddenError("You do not have access to this order"))
			return
		}

		response.Success(w, http.StatusOK, order)
	}
}

func canViewOrder(claims *models.Claims, order *models.Order) bool {
	if claims.Role == models.RoleAdmin {
		return true
	}

	if order.UserID == claims.UserID {
		return true
	}

	return claims.Role == models.RoleCourier && order.CourierID != nil && *order.CourierID == claims.UserID
}

func (h *OrderHandler) ListMyOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		orders, err := h.orderService.ListOrdersByUser(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, withDisplayStatus(orders))
	}
}

// withDisplayStatus collapses internal states into the customer-facing set.
func withDisplayStatus(orders []models.Order) []models.Order {
	out := make([]models.Order, len(orders))

	for i, order := range orders {
		order.Status = order.Status.DisplayStatus()
		out[i] = order
	}

	return out
}

func (h *OrderHandler) ListAllOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
			return
		}

		orders, err := h.orderService.ListAllOrders(r.Context())
		if err != nil {
			logger.Error("Failed to list orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, withDisplayStatus(orders))
	}
}

func (h *OrderHandler) ListRecentOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
			return
		}

		limit := utils.ParseQueryInt(r, "limit", 10)

		orders, err := h.orderService.ListRecentOrders(r.Context(), limit)
		if err != nil {
			logger.Error("Failed to list recent orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, orders)
	}
}

func (h *OrderHandler) UpdateOrderStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid status update input")
			return
		}

		order, err := h.orderService.UpdateOrderStatus(r.Context(), id, req.Status)
		if err != nil {
			logger.Error("Failed to update order status", slog.Int64("orderId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Order status updated", slog.Int64("orderId", id), slog.String("status", string(order.Status)))
		response.Success(w, http.StatusOK, order)
	}
}

func (h *OrderHandler) AssignCourier() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.AssignCourierRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid courier assignment input")
			return
		}

		order, err := h.orderService.AssignCourier(r.Context(), id, req.CourierID)
		if err != nil {
			logger.Error("Failed to assign courier", slog.Int64("orderId", id), slog.Int64("courierId", req.CourierID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Courier assigned", slog.Int64("orderId", id), slog.Int64("courierId", req.CourierID))
		response.Success(w, http.StatusOK, order)
	}
}

func (h *OrderHandler) ListUnassignedOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
			return
		}

		orders, err := h.orderService.ListUnassignedOrders(r.Context(), r.URL.Query().Get("status"))
		if err != nil {
			logger.Error("Failed to list unassigned orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, orders)
	}
}

func (h *OrderHandler) ListCourierOrders() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireRole(w, r, models.RoleCourier)
		if !ok {
			return
		}

		orders, err := h.orderService.ListOrdersByCourier(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to list courier orders", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, orders)
	}
}

// UpdateDeliveryStatus lets a courier move their own assigned orders through
// the delivery states.
func (h *OrderHandler) UpdateDeliveryStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireRole(w, r, models.RoleCourier)
		if !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		order, err := h.orderService.GetOrderByID(r.Context(), id)
		if err != nil {
			logger.Warn("Failed to get order", slog.Int64("orderId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		if order.CourierID == nil || *order.CourierID != claims.UserID {
			logger.Warn("Courier tried to update an order not assigned to them", slog.Int64("orderId", id))
			response.Error(w, errors.ForbiddenError("Order is not assigned to you"))
			return
		}

		var req models.UpdateOrderStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid status update input")
			return
		}

		updated, err := h.orderService.UpdateOrderStatus(r.Context(), id, req.Status)
		if err != nil {
			logger.Error("Failed to update delivery status", slog.Int64("orderId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Delivery status updated", slog.Int64("orderId", id), slog.String("status", string(updated.Status)))
		response.Success(w, http.StatusOK, updated)
	}
}

func (h *OrderHandler) GetDeliveryStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireRole(w, r, models.RoleCourier)
		if !ok {
			return
		}

		stats, err := h.orderService.GetDeliveryStats(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to get delivery stats", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, stats)
	}
}
