package service

import (
	"context"
	"database/sql"
	"errors"

	appErrors "github.com/farma-ya/pharmacy-platform/internal/errors"
	repository "github.com/farma-ya/pharmacy-platform/internal/repositories"
)

type InventoryService interface {
	HasEnoughStock(ctx context.Context, productID int64, quantity int) (bool, error)
	CheckAndDecrementStock(ctx context.Context, productID int64, quantity int) error
}

type inventoryService struct {
	productRepo repository.ProductRepository
}

func NewInventoryService(productRepo repository.ProductRepository) InventoryService {
	return &inventoryService{productRepo: productRepo}
}

func (s *inventoryService) HasEnoughStock(ctx context.Context, productID int64, quantity int) (bool, error) {

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.NotFoundError("Product not found").WithError(err)
		}
		return false, appErrors.DatabaseError("Failed to get product").WithError(err)
	}

	return product.Stock >= quantity, nil
}

// CheckAndDecrementStock delegates to the guarded update; the check and the
// write are one statement, so concurrent checkouts cannot oversell.
func (s *inventoryService) CheckAndDecrementStock(ctx context.Context, productID int64, quantity int) error {

	if quantity < 1 {
		return appErrors.BadRequestError("Quantity must be at least 1")
	}

	if err := s.productRepo.DecrementStock(ctx, productID, quantity); err != nil {
		if _, ok := appErrors.IsAppError(err); ok {
			return err
		}
		return appErrors.DatabaseError("Failed to decrement stock").WithError(err)
	}

	return nil
}
