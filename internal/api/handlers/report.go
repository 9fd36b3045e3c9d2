package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/farma-ya/pharmacy-platform/internal/api/middleware"
	"github.com/farma-ya/pharmacy-platform/internal/errors"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	service "github.com/farma-ya/pharmacy-platform/internal/services"
	"github.com/farma-ya/pharmacy-platform/internal/utils"
	"github.com/farma-ya/pharmacy-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

type ReportHandler struct {
	reportService service.ReportService
	validator     *validator.Validate
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService, validator: validator.New()}
}

func (h *ReportHandler) GenerateWeeklyReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
			return
		}

		var req models.GenerateWeeklyReportRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid report input")
			return
		}

		start, err := time.ParseInLocation(dateLayout, req.StartDate, time.Local)
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid start date").WithError(err))
			return
		}

		end, err := time.ParseInLocation(dateLayout, req.EndDate, time.Local)
		if err != nil {
			response.Error(w, errors.BadRequestError("Invalid end date").WithError(err))
			return
		}

		report, err := h.reportService.GenerateWeeklyReport(r.Context(), start, end)
		if err != nil {
			logger.Error("Failed to generate weekly report", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Weekly report ready", slog.String("yearWeek", report.YearWeek))
		response.Success(w, http.StatusOK, report)
	}
}

func (h *ReportHandler) GenerateAutomaticReports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
			return
		}

		weeks := utils.ParseQueryInt(r, "weeks", 4)

		reports, err := h.reportService.GenerateAutomaticReports(r.Context(), weeks)
		if err != nil {
			logger.Error("Failed to generate automatic reports", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Automatic reports generated", slog.Int("count", len(reports)))
		response.Success(w, http.StatusOK, reports)
	}
}

func (h *ReportHandler) GenerateDailyProfitReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
			return
		}

		date := time.Now()

		if raw := r.URL.Query().Get("date"); raw != "" {
			parsed, err := time.ParseInLocation(dateLayout, raw, time.Local)
			if err != nil {
				response.Error(w, errors.BadRequestError("Invalid date").WithError(err))
				return
			}
			date = parsed
		}

		report, err := h.reportService.GenerateDailyProfitReport(r.Context(), date)
		if err != nil {
			logger.Error("Failed to generate daily profit report", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, report)
	}
}

func (h *ReportHandler) ListReportsByYear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
			return
		}

		year := utils.ParseQueryInt(r, "year", time.Now().Year())

		reports, err := h.reportService.ListReportsByYear(r.Context(), year)
		if err != nil {
			logger.Error("Failed to list reports", slog.Int("year", year), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, reports)
	}
}

func (h *ReportHandler) ListRecentReports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
			return
		}

		limit := utils.ParseQueryInt(r, "limit", 10)

		reports, err := h.reportService.ListRecentReports(r.Context(), limit)
		if err != nil {
			logger.Error("Failed to list recent reports", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, reports)
	}
}
