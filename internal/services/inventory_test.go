package service_test

import (
	"context"
	"database/sql"
	"testing"

	appErrors "github.com/farma-ya/pharmacy-platform/internal/errors"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	"github.com/farma-ya/pharmacy-platform/internal/repositories/mocks"
	service "github.com/farma-ya/pharmacy-platform/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupInventoryServiceTest(t *testing.T) (service.InventoryService, *mocks.ProductRepository) {
	t.Helper()

	mockProductRepo := new(mocks.ProductRepository)
	inventoryService := service.NewInventoryService(mockProductRepo)

	return inventoryService, mockProductRepo
}

func TestHasEnoughStock(t *testing.T) {
	t.Run("Success - Enough Stock", func(t *testing.T) {
		// Arrange
		inventoryService, mockProductRepo := setupInventoryServiceTest(t)
		ctx := context.Background()

		mockProductRepo.On("GetProductByID", mock.Anything, int64(3)).Return(&models.Product{ID: 3, Stock: 10}, nil).Once()

		// Act
		ok, err := inventoryService.HasEnoughStock(ctx, 3, 10)

		// Assert
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Success - Not Enough Stock", func(t *testing.T) {
		// Arrange
		inventoryService, mockProductRepo := setupInventoryServiceTest(t)
		ctx := context.Background()

		mockProductRepo.On("GetProductByID", mock.Anything, int64(3)).Return(&models.Product{ID: 3, Stock: 4}, nil).Once()

		// Act
		ok, err := inventoryService.HasEnoughStock(ctx, 3, 5)

		// Assert
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Failure - Product Not Found", func(t *testing.T) {
		// Arrange
		inventoryService, mockProductRepo := setupInventoryServiceTest(t)
		ctx := context.Background()

		mockProductRepo.On("GetProductByID", mock.Anything, int64(99)).Return(nil, sql.ErrNoRows).Once()

		// Act
		ok, err := inventoryService.HasEnoughStock(ctx, 99, 1)

		// Assert
		require.Error(t, err)
		assert.False(t, ok)

		appErr, isApp := appErrors.IsAppError(err)
		require.True(t, isApp)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}

func TestCheckAndDecrementStock(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		inventoryService, mockProductRepo := setupInventoryServiceTest(t)
		ctx := context.Background()

		mockProductRepo.On("DecrementStock", mock.Anything, int64(3), 2).Return(nil).Once()

		// Act
		err := inventoryService.CheckAndDecrementStock(ctx, 3, 2)

		// Assert
		require.NoError(t, err)
		mockProductRepo.AssertExpectations(t)
	})

	t.Run("Failure - Non Positive Quantity", func(t *testing.T) {
		// Arrange
		inventoryService, mockProductRepo := setupInventoryServiceTest(t)
		ctx := context.Background()

		// Act
		err := inventoryService.CheckAndDecrementStock(ctx, 3, 0)

		// Assert
		require.Error(t, err)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeBadRequest, appErr.Code)

		mockProductRepo.AssertNotCalled(t, "DecrementStock", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - Insufficient Stock Propagates Untouched", func(t *testing.T) {
		// Arrange
		inventoryService, mockProductRepo := setupInventoryServiceTest(t)
		ctx := context.Background()

		stockErr := appErrors.InsufficientStockError("Ibuprofen 400mg", 1, 2)
		mockProductRepo.On("DecrementStock", mock.Anything, int64(3), 2).Return(stockErr).Once()

		// Act
		err := inventoryService.CheckAndDecrementStock(ctx, 3, 2)

		// Assert
		require.Error(t, err)
		assert.Equal(t, stockErr, err)
	})
}
