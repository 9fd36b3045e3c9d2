package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/farma-ya/pharmacy-platform/internal/api/middleware"
	appErrors "github.com/farma-ya/pharmacy-platform/internal/errors"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	repository "github.com/farma-ya/pharmacy-platform/internal/repositories"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// orderNumberAttempts bounds the regenerate-on-conflict loop for the unique
// order number constraint.
const orderNumberAttempts = 3

const uniqueViolation = "23505"

// EmailSender delivers the order confirmation. A nil sender disables email.
type EmailSender interface {
	SendOrderConfirmation(ctx context.Context, to string, order *models.Order) error
}

type OrderService interface {
	CreateOrderFromCart(ctx context.Context, user *models.User, req *models.CheckoutRequest) (*models.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	ListRecentOrders(ctx context.Context, limit int) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, statusToken string) (*models.Order, error)
	AssignCourier(ctx context.Context, orderID, courierID int64) (*models.Order, error)
	ListOrdersByCourier(ctx context.Context, courierID int64) ([]models.Order, error)
	ListUnassignedOrders(ctx context.Context, statusToken string) ([]models.Order, error)
	GetDeliveryStats(ctx context.Context, courierID int64) (*models.DeliveryStats, error)
	CountOrdersByStatus(ctx context.Context, status models.OrderStatus) (int64, error)
}

type orderService struct {
	orderRepo repository.OrderRepository
	cartRepo  repository.CartRepository
	userRepo  repository.UserRepository
	email     EmailSender
}

func NewOrderService(orderRepo repository.OrderRepository, cartRepo repository.CartRepository, userRepo repository.UserRepository, email EmailSender) OrderService {
	return &orderService{orderRepo: orderRepo, cartRepo: cartRepo, userRepo: userRepo, email: email}
}

func (s *orderService) CreateOrderFromCart(ctx context.Context, user *models.User, req *models.CheckoutRequest) (*models.Order, error) {

	logger := middleware.LoggerFromContext(ctx)

	cart, err := s.cartRepo.GetCartByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.EmptyCartError().WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to get cart").WithError(err)
	}

	if len(cart.Items) == 0 {
		return nil, appErrors.EmptyCartError()
	}

	// Line prices freeze at checkout; later catalog edits don't touch the
	// order.
	var items []models.OrderItem

	subtotal := decimal.Zero

	for _, item := range cart.Items {
		lineSubtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))

		items = append(items, models.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    lineSubtotal,
		})

		subtotal = subtotal.Add(lineSubtotal)
	}

	order := &models.Order{
		UserID:   user.ID,
		Status:   models.OrderStatusPending,
		Items:    items,
		Subtotal: subtotal,
		Total:    subtotal,
	}

	if req.ShippingAddress != "" || req.ShippingDistrict != "" || req.ShippingReference != "" {
		order.ShippingAddress = &models.Address{
			UserID:    user.ID,
			Line:      req.ShippingAddress,
			District:  req.ShippingDistrict,
			Reference: req.ShippingReference,
		}
	}

	for attempt := 1; ; attempt++ {
		order.OrderNumber = generateOrderNumber()

		err = s.orderRepo.CreateOrderFromCart(ctx, order)
		if err == nil {
			break
		}

		if appErr, ok := appErrors.IsAppError(err); ok {
			return nil, appErr
		}

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation && attempt < orderNumberAttempts {
			logger.Warn("Order number collision, regenerating", slog.String("orderNumber", order.OrderNumber))
			continue
		}

		return nil, appErrors.DatabaseError("Failed to create order").WithError(err)
	}

	// Confirmation email is best effort; the order stands either way.
	if s.email != nil {
		if err := s.email.SendOrderConfirmation(ctx, user.Email, order); err != nil {
			logger.Error("Failed to send order confirmation email", slog.String("orderNumber", order.OrderNumber), slog.Any("error", err))
		}
	}

	return order, nil
}

func generateOrderNumber() string {
	return fmt.Sprintf("PED%d%03d", time.Now().UnixMilli(), rand.Intn(1000))
}

func (s *orderService) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {

	order, err := s.orderRepo.GetOrderByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to get order").WithError(err)
	}

	return order, nil
}

func (s *orderService) ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {

	orders, err := s.orderRepo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list orders").WithError(err)
	}

	return orders, nil
}

func (s *orderService) ListAllOrders(ctx context.Context) ([]models.Order, error) {

	orders, err := s.orderRepo.ListAllOrders(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list orders").WithError(err)
	}

	return orders, nil
}

func (s *orderService) ListRecentOrders(ctx context.Context, limit int) ([]models.Order, error) {

	if limit < 1 || limit > 50 {
		limit = 10
	}

	orders, err := s.orderRepo.ListRecentOrders(ctx, limit)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list recent orders").WithError(err)
	}

	return orders, nil
}

func (s *orderService) UpdateOrderStatus(ctx context.Context, id int64, statusToken string) (*models.Order, error) {

	status, ok := models.ParseOrderStatus(statusToken)
	if !ok {
		return nil, appErrors.InvalidStatusError(statusToken)
	}

	err := s.orderRepo.UpdateOrderStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to update order status").WithError(err)
	}

	return s.GetOrderByID(ctx, id)
}

func (s *orderService) AssignCourier(ctx context.Context, orderID, courierID int64) (*models.Order, error) {

	courier, err := s.userRepo.GetUserByID(ctx, courierID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Courier not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to get courier").WithError(err)
	}

	if courier.Role() != models.RoleCourier {
		return nil, appErrors.InvalidRoleError(courier.Username, string(models.RoleCourier))
	}

	err = s.orderRepo.AssignCourier(ctx, orderID, courierID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.NotFoundError("Order not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to assign courier").WithError(err)
	}

	return s.GetOrderByID(ctx, orderID)
}

func (s *orderService) ListOrdersByCourier(ctx context.Context, courierID int64) ([]models.Order, error) {

	orders, err := s.orderRepo.ListOrdersByCourier(ctx, courierID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list courier orders").WithError(err)
	}

	return orders, nil
}

func (s *orderService) ListUnassignedOrders(ctx context.Context, statusToken string) ([]models.Order, error) {

	status := models.OrderStatusPending

	if statusToken != "" {
		parsed, ok := models.ParseOrderStatus(statusToken)
		if !ok {
			return nil, appErrors.InvalidStatusError(statusToken)
		}
		status = parsed
	}

	orders, err := s.orderRepo.ListUnassignedOrdersByStatus(ctx, status)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list unassigned orders").WithError(err)
	}

	return orders, nil
}

func (s *orderService) GetDeliveryStats(ctx context.Context, courierID int64) (*models.DeliveryStats, error) {

	stats, err := s.orderRepo.GetDeliveryStats(ctx, courierID)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to get delivery stats").WithError(err)
	}

	return stats, nil
}

func (s *orderService) CountOrdersByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {

	count, err := s.orderRepo.CountOrdersByStatus(ctx, status)
	if err != nil {
		return 0, appErrors.DatabaseError("Failed to count orders").WithError(err)
	}

	return count, nil
}
