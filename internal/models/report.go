package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WeeklySalesReport is a frozen aggregate over DELIVERED orders of one ISO
// week, keyed by YearWeek ("2025-W01"). At most one report exists per key.
type WeeklySalesReport struct {
	ID                  int64                     `json:"id"`
	WeekStart           time.Time                 `json:"week_start"`
	WeekEnd             time.Time                 `json:"week_end"`
	YearWeek            string                    `json:"year_week"`
	TotalOrders         int                       `json:"total_orders"`
	TotalUnitsSold      int                       `json:"total_units_sold"`
	TotalRevenue        decimal.Decimal           `json:"total_revenue"`
	BestSellingProduct  *Product                  `json:"best_selling_product,omitempty"`
	BestSellingCategory string                    `json:"best_selling_category,omitempty"`
	GeneratedAt         time.Time                 `json:"generated_at"`
	Details             []WeeklySalesReportDetail `json:"details,omitempty"`
}

type WeeklySalesReportDetail struct {
	ID          int64           `json:"id"`
	ReportID    int64           `json:"report_id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	UnitsSold   int             `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// DailyProfitReport is computed on demand and never persisted.
type DailyProfitReport struct {
	Date           time.Time         `json:"date"`
	TotalOrders    int               `json:"total_orders"`
	TotalUnitsSold int               `json:"total_units_sold"`
	TotalRevenue   decimal.Decimal   `json:"total_revenue"`
	Lines          []DailyProfitLine `json:"lines"`
}

type DailyProfitLine struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	UnitsSold   int             `json:"units_sold"`
	Revenue     decimal.Decimal `json:"revenue"`
}

type GenerateWeeklyReportRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}
