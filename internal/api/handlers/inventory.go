package handlers

import (
	"log/slog"
	"net/http"

	"github.com/farma-ya/pharmacy-platform/internal/api/middleware"
	"github.com/farma-ya/pharmacy-platform/internal/models"
	service "github.com/farma-ya/pharmacy-platform/internal/services"
	"github.com/farma-ya/pharmacy-platform/internal/utils"
	"github.com/farma-ya/pharmacy-platform/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type InventoryHandler struct {
	inventoryService service.InventoryService
	validator        *validator.Validate
}

func NewInventoryHandler(inventoryService service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventoryService: inventoryService, validator: validator.New()}
}

// CheckAvailability answers whether the requested quantity is currently in
// stock. Advisory only, checkout re-verifies.
func (h *InventoryHandler) CheckAvailability() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		quantity := utils.ParseQueryInt(r, "quantity", 1)

		available, err := h.inventoryService.HasEnoughStock(r.Context(), id, quantity)
		if err != nil {
			logger.Warn("Failed to check stock", slog.Int64("productId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, models.StockAvailability{
			ProductID: id,
			Requested: quantity,
			Available: available,
		})
	}
}

// DecrementStock records a manual stock deduction, for shrinkage and
// over-the-counter sales that bypass the online flow.
func (h *InventoryHandler) DecrementStock() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
			return
		}

		id, err := utils.ParseID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.AdjustStockRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid stock adjustment input")
			return
		}

		if err := h.inventoryService.CheckAndDecrementStock(r.Context(), id, req.Quantity); err != nil {
			logger.Error("Failed to decrement stock", slog.Int64("productId", id), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Stock decremented", slog.Int64("productId", id), slog.Int("quantity", req.Quantity))
		response.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
