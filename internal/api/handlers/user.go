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

type UserHandler struct {
	userService service.UserService
	validator   *validator.Validate
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService, validator: validator.New()}
}

func (h *UserHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.RegisterRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid registration input")
			return
		}

		user, err := h.userService.Register(r.Context(), &req)
		if err != nil {
			logger.Error("Registration failed", slog.String("username", req.Username), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("User registered", slog.Int64("userId", user.ID))
		response.Success(w, http.StatusCreated, user)
	}
}

func (h *UserHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.LoginRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid login input")
			return
		}

		result, err := h.userService.Login(r.Context(), &req)
		if err != nil {
			logger.Error("Login failed", slog.String("username", req.Username), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		if !result.Success {
			logger.Warn("Login rejected", slog.String("username", req.Username))
			response.Success(w, http.StatusUnauthorized, result)
			return
		}

		logger.Info("Login successful", slog.String("username", req.Username))
		response.Success(w, http.StatusOK, result)
	}
}

func (h *UserHandler) Profile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		user, err := h.userService.GetUserByID(r.Context(), claims.UserID)
		if err != nil {
			logger.Error("Failed to load profile", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, user)
	}
}

func (h *UserHandler) ListCouriers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		if _, ok := requireRole(w, r, models.RoleAdmin); !ok {
			return
		}

		couriers, err := h.userService.ListCouriers(r.Context())
		if err != nil {
			logger.Error("Failed to list couriers", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, couriers)
	}
}
