package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farma-ya/pharmacy-platform/internal/models"
	"github.com/farma-ya/pharmacy-platform/internal/utils"
)

type ReportRepository interface {
	CreateReport(ctx context.Context, report *models.WeeklySalesReport) error
	GetReportByYearWeek(ctx context.Context, yearWeek string) (*models.WeeklySalesReport, error)
	ExistsByYearWeek(ctx context.Context, yearWeek string) (bool, error)
	ListReportsByYear(ctx context.Context, year int) ([]models.WeeklySalesReport, error)
	ListRecentReports(ctx context.Context, limit int) ([]models.WeeklySalesReport, error)
}

type reportRepository struct {
	DB *sql.DB
}

func NewReportRepo(db *sql.DB) ReportRepository {
	return &reportRepository{DB: db}
}

// CreateReport persists the summary row and its per-product detail rows in
// one transaction.
func (r *reportRepository) CreateReport(ctx context.Context, report *models.WeeklySalesReport) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tx, err := r.DB.BeginTx(dbCtx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	var bestProductID sql.NullInt64
	if report.BestSellingProduct != nil {
		bestProductID = sql.NullInt64{Int64: report.BestSellingProduct.ID, Valid: true}
	}

	query := `
		INSERT INTO weekly_sales_reports
			(week_start, week_end, year_week, total_orders, total_units_sold, total_revenue,
			 best_selling_product_id, best_selling_category, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		RETURNING id, generated_at
	`

	err = tx.QueryRowContext(dbCtx, query,
		report.WeekStart, report.WeekEnd, report.YearWeek, report.TotalOrders,
		report.TotalUnitsSold, report.TotalRevenue, bestProductID, report.BestSellingCategory).
		Scan(&report.ID, &report.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}

	for i := range report.Details {
		detail := &report.Details[i]
		detail.ReportID = report.ID

		query := `
			INSERT INTO weekly_sales_report_details (report_id, product_id, units_sold, revenue)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`

		err := tx.QueryRowContext(dbCtx, query, detail.ReportID, detail.ProductID, detail.UnitsSold, detail.Revenue).
			Scan(&detail.ID)
		if err != nil {
			return fmt.Errorf("failed to insert report detail: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}

	return nil
}

const reportColumns = `r.id, r.week_start, r.week_end, r.year_week, r.total_orders, r.total_units_sold,
		r.total_revenue, r.best_selling_category, r.generated_at,
		p.id, p.sku, p.name, p.category`

const reportFrom = ` FROM weekly_sales_reports r LEFT JOIN products p ON r.best_selling_product_id = p.id`

func (r *reportRepository) GetReportByYearWeek(ctx context.Context, yearWeek string) (*models.WeeklySalesReport, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + reportColumns + reportFrom + ` WHERE r.year_week = $1`

	report, err := scanReport(r.DB.QueryRowContext(dbCtx, query, yearWeek))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get the report: %w", err)
	}

	details, err := r.loadReportDetails(dbCtx, report.ID)
	if err != nil {
		return nil, err
	}

	report.Details = details

	return report, nil
}

func (r *reportRepository) ExistsByYearWeek(ctx context.Context, yearWeek string) (bool, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	var exists bool

	err := r.DB.QueryRowContext(dbCtx,
		`SELECT EXISTS (SELECT 1 FROM weekly_sales_reports WHERE year_week = $1)`, yearWeek).
		Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check report existence: %w", err)
	}

	return exists, nil
}

func (r *reportRepository) ListReportsByYear(ctx context.Context, year int) ([]models.WeeklySalesReport, error) {
	query := `SELECT ` + reportColumns + reportFrom + ` WHERE r.year_week LIKE $1 ORDER BY r.year_week`

	return r.listReports(ctx, query, fmt.Sprintf("%d-W%%", year))
}

func (r *reportRepository) ListRecentReports(ctx context.Context, limit int) ([]models.WeeklySalesReport, error) {
	query := `SELECT ` + reportColumns + reportFrom + ` ORDER BY r.week_start DESC LIMIT $1`

	return r.listReports(ctx, query, limit)
}

func (r *reportRepository) listReports(ctx context.Context, query string, args ...any) ([]models.WeeklySalesReport, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	defer rows.Close()

	var reports []models.WeeklySalesReport

	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		reports = append(reports, *report)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range reports {
		details, err := r.loadReportDetails(dbCtx, reports[i].ID)
		if err != nil {
			return nil, err
		}

		reports[i].Details = details
	}

	return reports, nil
}

func (r *reportRepository) loadReportDetails(ctx context.Context, reportID int64) ([]models.WeeklySalesReportDetail, error) {

	query := `
		SELECT d.id, d.product_id, d.units_sold, d.revenue, p.name
		FROM weekly_sales_report_details d
		JOIN products p ON d.product_id = p.id
		WHERE d.report_id = $1
		ORDER BY d.product_id
	`

	rows, err := r.DB.QueryContext(ctx, query, reportID)
	if err != nil {
		return nil, fmt.Errorf("failed to get the report details: %w", err)
	}

	defer rows.Close()

	var details []models.WeeklySalesReportDetail

	for rows.Next() {
		var detail models.WeeklySalesReportDetail

		err := rows.Scan(&detail.ID, &detail.ProductID, &detail.UnitsSold, &detail.Revenue, &detail.ProductName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report detail: %w", err)
		}

		detail.ReportID = reportID

		details = append(details, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return details, nil
}

func scanReport(row rowScanner) (*models.WeeklySalesReport, error) {
	report := &models.WeeklySalesReport{}

	var (
		productID sql.NullInt64
		sku       sql.NullString
		name      sql.NullString
		category  sql.NullString
	)

	err := row.Scan(
		&report.ID, &report.WeekStart, &report.WeekEnd, &report.YearWeek,
		&report.TotalOrders, &report.TotalUnitsSold, &report.TotalRevenue,
		&report.BestSellingCategory, &report.GeneratedAt,
		&productID, &sku, &name, &category)
	if err != nil {
		return nil, err
	}

	if productID.Valid {
		report.BestSellingProduct = &models.Product{
			ID:       productID.Int64,
			SKU:      sku.String,
			Name:     name.String,
			Category: category.String,
		}
	}

	return report, nil
}
