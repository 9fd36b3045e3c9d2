package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/farma-ya/pharmacy-platform/internal/api/handlers"
	"github.com/farma-ya/pharmacy-platform/internal/api/middleware"
	"github.com/farma-ya/pharmacy-platform/internal/config"
	"github.com/farma-ya/pharmacy-platform/internal/health"
	"github.com/farma-ya/pharmacy-platform/internal/metrics"
	repository "github.com/farma-ya/pharmacy-platform/internal/repositories"
	service "github.com/farma-ya/pharmacy-platform/internal/services"
	"github.com/farma-ya/pharmacy-platform/pkg/sendgrid"
)

func main() {

	// Logger setup
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load config
	cfg := config.MustLoad()

	// Database setup
	repos, err := repository.New(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the database", "error", err.Error())
		os.Exit(1)
	}

	defer func() {
		if err := repos.Close(); err != nil {
			slog.Error("⚠️ Error closing database connection", slog.String("error", err.Error()))
		} else {
			slog.Info("✅ Database connection closed")
		}
	}()

	// Redis setup
	redisClient, err := repository.NewRedisClient(cfg)
	if err != nil {
		slog.Error("❌ Error accessing the redis instance", "error", err.Error())
		os.Exit(1)
	}

	rateLimitRepo := repository.NewRateLimitRepo(redisClient, cfg)

	jwtKey := []byte(cfg.Security.JWTKey)

	var emailService sendgrid.EmailService
	if cfg.SendGrid.APIKey != "" {
		emailService = sendgrid.NewEmailService(cfg.SendGrid.APIKey, cfg.SendGrid.FromEmail, cfg.SendGrid.FromName)
	} else {
		slog.Warn("SendGrid API key not configured, order confirmation emails disabled")
	}

	userService := service.NewUserService(repos.User, rateLimitRepo, jwtKey, cfg.Security.TokenTTL)
	userHandler := handlers.NewUserHandler(userService)
	productService := service.NewProductService(repos.Product)
	productHandler := handlers.NewProductHandler(productService)
	inventoryService := service.NewInventoryService(repos.Product)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService)
	cartService := service.NewCartService(repos.Cart, repos.Product)
	cartHandler := handlers.NewCartHandler(cartService)
	orderService := service.NewOrderService(repos.Order, repos.Cart, repos.User, emailService)
	orderHandler := handlers.NewOrderHandler(orderService, userService)
	reportService := service.NewReportService(repos.Report, repos.Order)
	reportHandler := handlers.NewReportHandler(reportService)
	dashboardService := service.NewDashboardService(repos.Order, repos.Product, repos.User)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	authMiddleware := middleware.NewAuthMiddleware(jwtKey)

	slog.Info("storage initialized", slog.String("env", cfg.Env), slog.String("version", "1.0.0"))

	healthHandler, err := health.NewHealthHandler(cfg, &health.Endpoints{DB: repos.DB, RedisClient: redisClient})
	if err != nil {
		slog.Error("❌ Error creating health handler", "error", err.Error())
		os.Exit(1)
	}

	// Setup router
	routerMux := http.NewServeMux()

	routerMux.Handle("GET /health", healthHandler.Handler())
	routerMux.Handle("GET /metrics", metrics.Handler())

	routerMux.HandleFunc("POST /api/v1/users/register", userHandler.Register())
	routerMux.HandleFunc("POST /api/v1/users/login", userHandler.Login())
	routerMux.HandleFunc("GET /api/v1/users/profile", authMiddleware.Authenticate(userHandler.Profile()))

	routerMux.HandleFunc("GET /api/v1/products", productHandler.ListProducts())
	routerMux.HandleFunc("GET /api/v1/products/{id}", productHandler.GetProduct())
	routerMux.HandleFunc("POST /api/v1/products", authMiddleware.Authenticate(productHandler.CreateProduct()))
	routerMux.HandleFunc("PUT /api/v1/products/{id}", authMiddleware.Authenticate(productHandler.UpdateProduct()))
	routerMux.HandleFunc("DELETE /api/v1/products/{id}", authMiddleware.Authenticate(productHandler.DeactivateProduct()))
	routerMux.HandleFunc("GET /api/v1/products/{id}/availability", inventoryHandler.CheckAvailability())
	routerMux.HandleFunc("POST /api/v1/admin/products/{id}/stock/decrement", authMiddleware.Authenticate(inventoryHandler.DecrementStock()))

	routerMux.HandleFunc("GET /api/v1/carts", authMiddleware.Authenticate(cartHandler.GetCart()))
	routerMux.HandleFunc("POST /api/v1/carts/items", authMiddleware.Authenticate(cartHandler.AddItem()))
	routerMux.HandleFunc("DELETE /api/v1/carts/items/{productId}", authMiddleware.Authenticate(cartHandler.RemoveItem()))
	routerMux.HandleFunc("DELETE /api/v1/carts", authMiddleware.Authenticate(cartHandler.ClearCart()))

	routerMux.HandleFunc("POST /api/v1/orders", authMiddleware.Authenticate(orderHandler.Checkout()))
	routerMux.HandleFunc("GET /api/v1/orders", authMiddleware.Authenticate(orderHandler.ListMyOrders()))
	routerMux.HandleFunc("GET /api/v1/orders/{id}", authMiddleware.Authenticate(orderHandler.GetOrder()))

	routerMux.HandleFunc("GET /api/v1/admin/orders", authMiddleware.Authenticate(orderHandler.ListAllOrders()))
	routerMux.HandleFunc("GET /api/v1/admin/orders/recent", authMiddleware.Authenticate(orderHandler.ListRecentOrders()))
	routerMux.HandleFunc("GET /api/v1/admin/orders/unassigned", authMiddleware.Authenticate(orderHandler.ListUnassignedOrders()))
	routerMux.HandleFunc("PATCH /api/v1/admin/orders/{id}/status", authMiddleware.Authenticate(orderHandler.UpdateOrderStatus()))
	routerMux.HandleFunc("POST /api/v1/admin/orders/{id}/courier", authMiddleware.Authenticate(orderHandler.AssignCourier()))
	routerMux.HandleFunc("GET /api/v1/admin/couriers", authMiddleware.Authenticate(userHandler.ListCouriers()))
	routerMux.HandleFunc("GET /api/v1/admin/dashboard", authMiddleware.Authenticate(dashboardHandler.GetStats()))
	routerMux.HandleFunc("GET /api/v1/admin/products/low-stock", authMiddleware.Authenticate(productHandler.ListLowStockProducts()))

	routerMux.HandleFunc("POST /api/v1/admin/reports/weekly", authMiddleware.Authenticate(reportHandler.GenerateWeeklyReport()))
	routerMux.HandleFunc("POST /api/v1/admin/reports/automatic", authMiddleware.Authenticate(reportHandler.GenerateAutomaticReports()))
	routerMux.HandleFunc("GET /api/v1/admin/reports", authMiddleware.Authenticate(reportHandler.ListReportsByYear()))
	routerMux.HandleFunc("GET /api/v1/admin/reports/latest", authMiddleware.Authenticate(reportHandler.ListRecentReports()))
	routerMux.HandleFunc("GET /api/v1/admin/reports/daily", authMiddleware.Authenticate(reportHandler.GenerateDailyProfitReport()))

	routerMux.HandleFunc("GET /api/v1/courier/orders", authMiddleware.Authenticate(orderHandler.ListCourierOrders()))
	routerMux.HandleFunc("PATCH /api/v1/courier/orders/{id}/status", authMiddleware.Authenticate(orderHandler.UpdateDeliveryStatus()))
	routerMux.HandleFunc("GET /api/v1/courier/stats", authMiddleware.Authenticate(orderHandler.GetDeliveryStats()))

	// Middleware chaining
	var handler http.Handler = routerMux
	handler = metrics.Middleware(handler)
	handler = middleware.Logging(handler)

	// Setup http server
	server := http.Server{
		Addr:    cfg.Addr,
		Handler: handler,
	}

	slog.Info("🚀 Server is starting...", slog.String("address", cfg.Addr))

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("❌ Failed to start server", slog.Any("error", err.Error()))
		}
	}()

	<-done

	slog.Warn("🛑 Shutdown signal received. Preparing to stop the server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("⚠️ Server shutdown encountered an issue", slog.String("error", err.Error()))
	} else {
		slog.Info("✅ Server shut down gracefully. All connections closed.")
	}

}
