package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	appErrors "github.com/farma-ya/pharmacy-platform/internal/errors"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	repository "github.com/farma-ya/pharmacy-platform/internal/repositories"
	"github.com/shopspring/decimal"
)

type ReportService interface {
	GenerateWeeklyReport(ctx context.Context, start, end time.Time) (*models.WeeklySalesReport, error)
	GenerateAutomaticReports(ctx context.Context, weeks int) ([]models.WeeklySalesReport, error)
	GenerateDailyProfitReport(ctx context.Context, date time.Time) (*models.DailyProfitReport, error)
	ListReportsByYear(ctx context.Context, year int) ([]models.WeeklySalesReport, error)
	ListRecentReports(ctx context.Context, limit int) ([]models.WeeklySalesReport, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
	orderRepo  repository.OrderRepository
}

func NewReportService(reportRepo repository.ReportRepository, orderRepo repository.OrderRepository) ReportService {
	return &reportService{reportRepo: reportRepo, orderRepo: orderRepo}
}

type productTally struct {
	productID int64
	name      string
	units     int
	revenue   decimal.Decimal
}

// GenerateWeeklyReport is idempotent per ISO-week key: if the period was
// already reported, the stored report is returned unchanged.
func (s *reportService) GenerateWeeklyReport(ctx context.Context, start, end time.Time) (*models.WeeklySalesReport, error) {

	if end.Before(start) {
		return nil, appErrors.BadRequestError("End date must not precede start date")
	}

	yearWeek := isoYearWeek(start)

	existing, err := s.reportRepo.GetReportByYearWeek(ctx, yearWeek)
	if err == nil {
		return existing, nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.DatabaseError("Failed to look up report").WithError(err)
	}

	windowStart := startOfDay(start)
	windowEnd := endOfDay(end)

	orders, err := s.orderRepo.ListDeliveredOrdersBetween(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to scan delivered orders").WithError(err)
	}

	report := &models.WeeklySalesReport{
		WeekStart:    windowStart,
		WeekEnd:      windowEnd,
		YearWeek:     yearWeek,
		TotalOrders:  len(orders),
		TotalRevenue: decimal.Zero,
	}

	tallies := map[int64]*productTally{}
	categoryUnits := map[string]int{}

	for _, order := range orders {
		for _, item := range order.Items {
			tally, ok := tallies[item.ProductID]
			if !ok {
				tally = &productTally{productID: item.ProductID, name: item.ProductName, revenue: decimal.Zero}
				tallies[item.ProductID] = tally
			}

			tally.units += item.Quantity
			tally.revenue = tally.revenue.Add(item.Subtotal)

			report.TotalUnitsSold += item.Quantity
			report.TotalRevenue = report.TotalRevenue.Add(item.Subtotal)

			categoryUnits[item.ProductCategory] += item.Quantity
		}
	}

	if best := bestProduct(tallies); best != nil {
		report.BestSellingProduct = &models.Product{ID: best.productID, Name: best.name}
	}

	report.BestSellingCategory = bestCategory(categoryUnits)

	for _, tally := range tallies {
		report.Details = append(report.Details, models.WeeklySalesReportDetail{
			ProductID:   tally.productID,
			ProductName: tally.name,
			UnitsSold:   tally.units,
			Revenue:     tally.revenue,
		})
	}

	sort.Slice(report.Details, func(i, j int) bool {
		return report.Details[i].ProductID < report.Details[j].ProductID
	})

	if err := s.reportRepo.CreateReport(ctx, report); err != nil {
		return nil, appErrors.DatabaseError("Failed to persist report").WithError(err)
	}

	return report, nil
}

// bestProduct picks the highest unit count; ties resolve to the lowest
// product id so repeated runs agree.
func bestProduct(tallies map[int64]*productTally) *productTally {
	var best *productTally

	for _, tally := range tallies {
		if best == nil ||
			tally.units > best.units ||
			(tally.units == best.units && tally.productID < best.productID) {
			best = tally
		}
	}

	return best
}

// bestCategory picks the highest unit count; ties resolve lexicographically.
func bestCategory(units map[string]int) string {
	var best string
	bestUnits := -1

	for category, count := range units {
		if count > bestUnits || (count == bestUnits && category < best) {
			best = category
			bestUnits = count
		}
	}

	return best
}

// GenerateAutomaticReports walks the Monday starts of the last n ISO weeks,
// current week first, and fills in any missing report.
func (s *reportService) GenerateAutomaticReports(ctx context.Context, weeks int) ([]models.WeeklySalesReport, error) {

	if weeks < 1 {
		weeks = 4
	}

	var generated []models.WeeklySalesReport

	monday := mondayOf(time.Now())

	for i := range weeks {
		weekStart := monday.AddDate(0, 0, -7*i)
		weekEnd := weekStart.AddDate(0, 0, 6)

		exists, err := s.reportRepo.ExistsByYearWeek(ctx, isoYearWeek(weekStart))
		if err != nil {
			return nil, appErrors.DatabaseError("Failed to look up report").WithError(err)
		}

		if exists {
			continue
		}

		report, err := s.GenerateWeeklyReport(ctx, weekStart, weekEnd)
		if err != nil {
			return nil, err
		}

		generated = append(generated, *report)
	}

	return generated, nil
}

// GenerateDailyProfitReport aggregates one day's delivered orders on demand.
// Nothing is persisted.
func (s *reportService) GenerateDailyProfitReport(ctx context.Context, date time.Time) (*models.DailyProfitReport, error) {

	orders, err := s.orderRepo.ListDeliveredOrdersBetween(ctx, startOfDay(date), endOfDay(date))
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to scan delivered orders").WithError(err)
	}

	report := &models.DailyProfitReport{
		Date:         startOfDay(date),
		TotalOrders:  len(orders),
		TotalRevenue: decimal.Zero,
	}

	lines := map[int64]*models.DailyProfitLine{}

	for _, order := range orders {
		for _, item := range order.Items {
			line, ok := lines[item.ProductID]
			if !ok {
				line = &models.DailyProfitLine{ProductID: item.ProductID, ProductName: item.ProductName, Revenue: decimal.Zero}
				lines[item.ProductID] = line
			}

			line.UnitsSold += item.Quantity
			line.Revenue = line.Revenue.Add(item.Subtotal)

			report.TotalUnitsSold += item.Quantity
			report.TotalRevenue = report.TotalRevenue.Add(item.Subtotal)
		}
	}

	for _, line := range lines {
		report.Lines = append(report.Lines, *line)
	}

	sort.Slice(report.Lines, func(i, j int) bool {
		return report.Lines[i].ProductID < report.Lines[j].ProductID
	})

	return report, nil
}

func (s *reportService) ListReportsByYear(ctx context.Context, year int) ([]models.WeeklySalesReport, error) {

	reports, err := s.reportRepo.ListReportsByYear(ctx, year)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list reports").WithError(err)
	}

	return reports, nil
}

func (s *reportService) ListRecentReports(ctx context.Context, limit int) ([]models.WeeklySalesReport, error) {

	if limit < 1 || limit > 50 {
		limit = 10
	}

	reports, err := s.reportRepo.ListRecentReports(ctx, limit)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list reports").WithError(err)
	}

	return reports, nil
}

func isoYearWeek(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func mondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t.AddDate(0, 0, -offset))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
