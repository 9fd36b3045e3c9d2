package service_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	appErrors "github.com/farma-ya/pharmacy-platform/internal/errors"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	"github.com/farma-ya/pharmacy-platform/internal/repositories/mocks"
	service "github.com/farma-ya/pharmacy-platform/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupReportServiceTest(t *testing.T) (service.ReportService, *mocks.ReportRepository, *mocks.OrderRepository) {
	t.Helper()

	mockReportRepo := new(mocks.ReportRepository)
	mockOrderRepo := new(mocks.OrderRepository)

	reportService := service.NewReportService(mockReportRepo, mockOrderRepo)

	return reportService, mockReportRepo, mockOrderRepo
}

func deliveredOrdersFixture() []models.Order {
	return []models.Order{
		{
			ID:     1,
			Status: models.OrderStatusDelivered,
			Items: []models.OrderItem{
				{ProductID: 3, ProductName: "Paracetamol 500mg", ProductCategory: "Analgesics", Quantity: 4, UnitPrice: decimal.RequireFromString("5.50"), Subtotal: decimal.RequireFromString("22.00")},
				{ProductID: 8, ProductName: "Vitamin C 1g", ProductCategory: "Supplements", Quantity: 2, UnitPrice: decimal.RequireFromString("9.00"), Subtotal: decimal.RequireFromString("18.00")},
			},
		},
		{
			ID:     2,
			Status: models.OrderStatusDelivered,
			Items: []models.OrderItem{
				{ProductID: 8, ProductName: "Vitamin C 1g", ProductCategory: "Supplements", Quantity: 2, UnitPrice: decimal.RequireFromString("9.00"), Subtotal: decimal.RequireFromString("18.00")},
			},
		},
	}
}

func TestGenerateWeeklyReport(t *testing.T) {
	// Monday of ISO week 2 of 2025.
	weekStart := time.Date(2025, time.January, 6, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 6)

	t.Run("Success - Aggregates Delivered Orders", func(t *testing.T) {
		// Arrange
		reportService, mockReportRepo, mockOrderRepo := setupReportServiceTest(t)
		ctx := context.Background()

		mockReportRepo.On("GetReportByYearWeek", mock.Anything, "2025-W02").Return(nil, sql.ErrNoRows).Once()
		mockOrderRepo.On("ListDeliveredOrdersBetween", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(deliveredOrdersFixture(), nil).Once()
		mockReportRepo.On("CreateReport", mock.Anything, mock.AnythingOfType("*models.WeeklySalesReport")).Return(nil).Once()

		// Act
		report, err := reportService.GenerateWeeklyReport(ctx, weekStart, weekEnd)

		// Assert
		require.NoError(t, err)
		require.NotNil(t, report)
		assert.Equal(t, "2025-W02", report.YearWeek)
		assert.Equal(t, 2, report.TotalOrders)
		assert.Equal(t, 8, report.TotalUnitsSold)
		assert.True(t, report.TotalRevenue.Equal(decimal.RequireFromString("58.00")), "Revenue should sum line subtotals, got %s", report.TotalRevenue)

		// Both products sold 4 units; the lower product id wins the tie.
		require.NotNil(t, report.BestSellingProduct)
		assert.Equal(t, int64(3), report.BestSellingProduct.ID)

		// Categories tie on units as well; lexicographic order decides.
		assert.Equal(t, "Analgesics", report.BestSellingCategory)

		require.Len(t, report.Details, 2)
		assert.Equal(t, int64(3), report.Details[0].ProductID)
		assert.Equal(t, int64(8), report.Details[1].ProductID)
		assert.Equal(t, 4, report.Details[1].UnitsSold)
		assert.True(t, report.Details[1].Revenue.Equal(decimal.RequireFromString("36.00")))

		mockReportRepo.AssertExpectations(t)
		mockOrderRepo.AssertExpectations(t)
	})

	t.Run("Success - Existing Report Returned Unchanged", func(t *testing.T) {
		// Arrange
		reportService, mockReportRepo, mockOrderRepo := setupReportServiceTest(t)
		ctx := context.Background()

		stored := &models.WeeklySalesReport{ID: 42, YearWeek: "2025-W02", TotalOrders: 9}
		mockReportRepo.On("GetReportByYearWeek", mock.Anything, "2025-W02").Return(stored, nil).Once()

		// Act
		report, err := reportService.GenerateWeeklyReport(ctx, weekStart, weekEnd)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, stored, report)
		mockOrderRepo.AssertNotCalled(t, "ListDeliveredOrdersBetween", mock.Anything, mock.Anything, mock.Anything)
		mockReportRepo.AssertNotCalled(t, "CreateReport", mock.Anything, mock.Anything)
	})

	t.Run("Failure - End Before Start", func(t *testing.T) {
		// Arrange
		reportService, _, _ := setupReportServiceTest(t)
		ctx := context.Background()

		// Act
		report, err := reportService.GenerateWeeklyReport(ctx, weekEnd, weekStart)

		// Assert
		require.Error(t, err)
		assert.Nil(t, report)

		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeBadRequest, appErr.Code)
	})

	t.Run("Success - Empty Week Produces Zero Report", func(t *testing.T) {
		// Arrange
		reportService, mockReportRepo, mockOrderRepo := setupReportServiceTest(t)
		ctx := context.Background()

		mockReportRepo.On("GetReportByYearWeek", mock.Anything, "2025-W02").Return(nil, sql.ErrNoRows).Once()
		mockOrderRepo.On("ListDeliveredOrdersBetween", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return([]models.Order{}, nil).Once()
		mockReportRepo.On("CreateReport", mock.Anything, mock.AnythingOfType("*models.WeeklySalesReport")).Return(nil).Once()

		// Act
		report, err := reportService.GenerateWeeklyReport(ctx, weekStart, weekEnd)

		// Assert
		require.NoError(t, err)
		assert.Zero(t, report.TotalOrders)
		assert.Zero(t, report.TotalUnitsSold)
		assert.True(t, report.TotalRevenue.IsZero())
		assert.Nil(t, report.BestSellingProduct)
		assert.Empty(t, report.BestSellingCategory)
	})
}

func TestGenerateAutomaticReports(t *testing.T) {
	t.Run("Success - Skips Weeks Already Reported", func(t *testing.T) {
		// Arrange
		reportService, mockReportRepo, mockOrderRepo := setupReportServiceTest(t)
		ctx := context.Background()

		// The current week exists, last week does not.
		mockReportRepo.On("ExistsByYearWeek", mock.Anything, mock.AnythingOfType("string")).Return(true, nil).Once()
		mockReportRepo.On("ExistsByYearWeek", mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Once()
		mockReportRepo.On("GetReportByYearWeek", mock.Anything, mock.AnythingOfType("string")).Return(nil, sql.ErrNoRows).Once()
		mockOrderRepo.On("ListDeliveredOrdersBetween", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return([]models.Order{}, nil).Once()
		mockReportRepo.On("CreateReport", mock.Anything, mock.AnythingOfType("*models.WeeklySalesReport")).Return(nil).Once()

		// Act
		generated, err := reportService.GenerateAutomaticReports(ctx, 2)

		// Assert
		require.NoError(t, err)
		assert.Len(t, generated, 1)
		mockReportRepo.AssertExpectations(t)
	})

	t.Run("Success - Walk Starts At The Current Week", func(t *testing.T) {
		// Arrange
		reportService, mockReportRepo, mockOrderRepo := setupReportServiceTest(t)
		ctx := context.Background()

		var requested []string

		mockReportRepo.On("ExistsByYearWeek", mock.Anything, mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) {
				requested = append(requested, args.String(1))
			}).Return(true, nil).Twice()

		// Act
		_, err := reportService.GenerateAutomaticReports(ctx, 2)

		// Assert
		require.NoError(t, err)
		require.Len(t, requested, 2)

		year, week := time.Now().ISOWeek()
		assert.Equal(t, fmt.Sprintf("%d-W%02d", year, week), requested[0])

		lastYear, lastWeek := time.Now().AddDate(0, 0, -7).ISOWeek()
		assert.Equal(t, fmt.Sprintf("%d-W%02d", lastYear, lastWeek), requested[1])

		mockOrderRepo.AssertNotCalled(t, "ListDeliveredOrdersBetween", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Success - Generated Weeks Start On Monday", func(t *testing.T) {
		// Arrange
		reportService, mockReportRepo, mockOrderRepo := setupReportServiceTest(t)
		ctx := context.Background()

		mockReportRepo.On("ExistsByYearWeek", mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Once()
		mockReportRepo.On("GetReportByYearWeek", mock.Anything, mock.AnythingOfType("string")).Return(nil, sql.ErrNoRows).Once()
		mockOrderRepo.On("ListDeliveredOrdersBetween", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return([]models.Order{}, nil).Once()
		mockReportRepo.On("CreateReport", mock.Anything, mock.AnythingOfType("*models.WeeklySalesReport")).Return(nil).Once()

		// Act
		generated, err := reportService.GenerateAutomaticReports(ctx, 1)

		// Assert
		require.NoError(t, err)
		require.Len(t, generated, 1)
		assert.Equal(t, time.Monday, generated[0].WeekStart.Weekday())
		assert.Equal(t, time.Sunday, generated[0].WeekEnd.Weekday())
	})
}

func TestGenerateDailyProfitReport(t *testing.T) {
	// Arrange
	reportService, mockReportRepo, mockOrderRepo := setupReportServiceTest(t)
	ctx := context.Background()

	date := time.Date(2025, time.March, 14, 15, 4, 5, 0, time.UTC)

	mockOrderRepo.On("ListDeliveredOrdersBetween", mock.Anything, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(deliveredOrdersFixture(), nil).Once()

	// Act
	report, err := reportService.GenerateDailyProfitReport(ctx, date)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, report.TotalOrders)
	assert.Equal(t, 8, report.TotalUnitsSold)
	assert.True(t, report.TotalRevenue.Equal(decimal.RequireFromString("58.00")))
	require.Len(t, report.Lines, 2)
	assert.Equal(t, int64(3), report.Lines[0].ProductID)
	assert.True(t, report.Date.Equal(time.Date(2025, time.March, 14, 0, 0, 0, 0, time.UTC)), "Report date should snap to the start of the day")

	// Daily reports are read-only aggregates.
	mockReportRepo.AssertNotCalled(t, "CreateReport", mock.Anything, mock.Anything)
}
