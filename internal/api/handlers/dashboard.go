package handlers

import (
	"log/slog"
	"net/http"

	"github.com/farma-ya/pharmacy-platform/internal/api/middleware"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	service "github.com/farma-ya/pharmacy-platform/internal/services"
	"github.com/farma-ya/pharmacy-platform/internal/utils/response"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) GetStats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
			return
		}

		stats, err := h.dashboardService.GetStats(r.Context())
		if err != nil {
			logger.Error("Failed to get dashboard stats", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, stats)
	}
}
