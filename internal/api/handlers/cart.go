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

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validator.New()}
}

func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to get cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req models.AddCartItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add item input")
			return
		}

		cart, err := h.cartService.AddItem(r.Context(), claims.UserID, &req)
		if err != nil {
			logger.Error("Failed to add item to cart", slog.Int64("productId", req.ProductID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Item added to cart", slog.Int64("productId", req.ProductID))
		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		productID, err := utils.ParseID(r, "productId")
		if err != nil {
			response.Error(w, err)
			return
		}

		cart, err := h.cartService.RemoveItem(r.Context(), claims.UserID, productID)
		if err != nil {
			logger.Error("Failed to remove item from cart", slog.Int64("productId", productID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Item removed from cart", slog.Int64("productId", productID))
		response.Success(w, http.StatusOK, cart)
	}
}

func (h *CartHandler) ClearCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		if err := h.cartService.ClearCart(r.Context(), claims.UserID); err != nil {
			logger.Error("Failed to clear cart", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Cart cleared")
		response.Success(w, http.StatusOK, map[string]string{"status": "cleared"})
	}
}
