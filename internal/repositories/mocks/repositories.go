// Package mocks holds hand-written testify mocks for the repository
// interfaces, used by the service tests.
package mocks

import (
	"context"
	"time"

	"github.com/farma-ya/pharmacy-platform/internal/models"
	"github.com/stretchr/testify/mock"
)

type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *UserRepository) ListUsersByRole(ctx context.Context, roleID int) ([]*models.User, error) {
	args := m.Called(ctx, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *UserRepository) CountUsersByRole(ctx context.Context, roleID int) (int64, error) {
	args := m.Called(ctx, roleID)
	return args.Get(0).(int64), args.Error(1)
}

type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *ProductRepository) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *ProductRepository) UpdateProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *ProductRepository) ListProducts(ctx context.Context, page, size int) ([]*models.Product, int, error) {
	args := m.Called(ctx, page, size)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*models.Product), args.Int(1), args.Error(2)
}

func (m *ProductRepository) ListLowStockProducts(ctx context.Context, threshold int) ([]*models.Product, error) {
	args := m.Called(ctx, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Product), args.Error(1)
}

func (m *ProductRepository) DecrementStock(ctx context.Context, productID int64, quantity int) error {
	args := m.Called(ctx, productID, quantity)
	return args.Error(0)
}

func (m *ProductRepository) DeactivateProduct(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ProductRepository) CountProducts(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type CartRepository struct {
	mock.Mock
}

func (m *CartRepository) CreateCart(ctx context.Context, cart *models.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *CartRepository) GetCartByUserID(ctx context.Context, userID int64) (*models.Cart, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cart), args.Error(1)
}

func (m *CartRepository) UpdateCart(ctx context.Context, cart *models.Cart) error {
	args := m.Called(ctx, cart)
	return args.Error(0)
}

func (m *CartRepository) ClearCart(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type OrderRepository struct {
	mock.Mock
}

func (m *OrderRepository) CreateOrderFromCart(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *OrderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *OrderRepository) ListOrdersByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *OrderRepository) ListAllOrders(ctx context.Context) ([]models.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *OrderRepository) ListRecentOrders(ctx context.Context, limit int) ([]models.Order, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *OrderRepository) ListOrdersByCourier(ctx context.Context, courierID int64) ([]models.Order, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *OrderRepository) ListUnassignedOrdersByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *OrderRepository) ListDeliveredOrdersBetween(ctx context.Context, start, end time.Time) ([]models.Order, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *OrderRepository) UpdateOrderStatus(ctx context.Context, id int64, status models.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *OrderRepository) AssignCourier(ctx context.Context, orderID, courierID int64) error {
	args := m.Called(ctx, orderID, courierID)
	return args.Error(0)
}

func (m *OrderRepository) CountOrdersByStatus(ctx context.Context, status models.OrderStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *OrderRepository) GetDeliveryStats(ctx context.Context, courierID int64) (*models.DeliveryStats, error) {
	args := m.Called(ctx, courierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeliveryStats), args.Error(1)
}

type ReportRepository struct {
	mock.Mock
}

func (m *ReportRepository) CreateReport(ctx context.Context, report *models.WeeklySalesReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *ReportRepository) GetReportByYearWeek(ctx context.Context, yearWeek string) (*models.WeeklySalesReport, error) {
	args := m.Called(ctx, yearWeek)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.WeeklySalesReport), args.Error(1)
}

func (m *ReportRepository) ExistsByYearWeek(ctx context.Context, yearWeek string) (bool, error) {
	args := m.Called(ctx, yearWeek)
	return args.Bool(0), args.Error(1)
}

func (m *ReportRepository) ListReportsByYear(ctx context.Context, year int) ([]models.WeeklySalesReport, error) {
	args := m.Called(ctx, year)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WeeklySalesReport), args.Error(1)
}

func (m *ReportRepository) ListRecentReports(ctx context.Context, limit int) ([]models.WeeklySalesReport, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.WeeklySalesReport), args.Error(1)
}

type RateLimitRepository struct {
	mock.Mock
}

func (m *RateLimitRepository) CheckLoginRateLimit(ctx context.Context, username string) (bool, int, int, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Int(1), args.Int(2), args.Error(3)
}

func (m *RateLimitRepository) ResetLoginAttempts(ctx context.Context, username string) error {
	args := m.Called(ctx, username)
	return args.Error(0)
}
