package service

import (
	"context"

	appErrors "github.com/farma-ya/pharmacy-platform/internal/errors"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	repository "github.com/farma-ya/pharmacy-platform/internal/repositories"
)

type DashboardService interface {
	GetStats(ctx context.Context) (*models.DashboardStats, error)
}

type dashboardService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
}

func NewDashboardService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository, userRepo repository.UserRepository) DashboardService {
	return &dashboardService{orderRepo: orderRepo, productRepo: productRepo, userRepo: userRepo}
}

func (s *dashboardService) GetStats(ctx context.Context) (*models.DashboardStats, error) {

	stats := &models.DashboardStats{
		OrdersByStatus: map[models.OrderStatus]int64{},
	}

	for _, status := range []models.OrderStatus{
		models.OrderStatusPending,
		models.OrderStatusProcessing,
		models.OrderStatusShipped,
		models.OrderStatusDelivered,
		models.OrderStatusCancelled,
	} {
		count, err := s.orderRepo.CountOrdersByStatus(ctx, status)
		if err != nil {
			return nil, appErrors.DatabaseError("Failed to count orders").WithError(err)
		}

		stats.OrdersByStatus[status] = count
		stats.TotalOrders += count
	}

	products, err := s.productRepo.CountProducts(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to count products").WithError(err)
	}

	stats.TotalProducts = products

	customers, err := s.userRepo.CountUsersByRole(ctx, models.RoleIDFor(models.RoleCustomer))
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to count customers").WithError(err)
	}

	stats.TotalCustomers = customers

	return stats, nil
}
