package main

import (
	"salepoint/internal/handler"
	"salepoint/internal/middleware"
	"salepoint/internal/model"
	"salepoint/pkg/config"
	"salepoint/pkg/database"
	"salepoint/pkg/jwtutil"
	"salepoint/pkg/logger"
	"salepoint/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting salepoint service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.Initialize(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))

	// Authentication routes
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)

	// API routes - all require authentication and an unsuspended business
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)
	api.Use(middleware.RequireActiveBusiness)

	api.POST("/logout", handler.Logout)
	api.GET("/me", handler.Me)

	// Business lifecycle - super admin only, except renewal requests
	businesses := api.Group("/businesses")
	businesses.POST("/renewal-request", handler.RequestLicenseRenewal,
		middleware.RequireRole(model.RoleBusinessAdmin))
	businesses.GET("/:id", handler.GetBusiness)

	adminBusinesses := businesses.Group("",
		middleware.RequireRole(model.RoleSuperAdmin))
	adminBusinesses.POST("", handler.RegisterBusiness)
	adminBusinesses.GET("", handler.ListBusinesses)
	adminBusinesses.POST("/:id/renew", handler.RenewLicense)
	adminBusinesses.POST("/:id/suspend", handler.SuspendBusiness)
	adminBusinesses.POST("/:id/activate", handler.ActivateBusiness)
	adminBusinesses.DELETE("/:id", handler.DeleteBusiness)

	// License overview - super admin only
	api.GET("/licenses/expiring", handler.ExpiringLicenses,
		middleware.RequireRole(model.RoleSuperAdmin))

	// User management
	users := api.Group("/users")
	users.POST("", handler.CreateUser,
		middleware.RequireRole(model.RoleSuperAdmin, model.RoleBusinessAdmin))
	users.GET("", handler.ListUsers,
		middleware.RequireRole(model.RoleSuperAdmin, model.RoleBusinessAdmin))
	users.GET("/:id", handler.GetUser,
		middleware.RequireRole(model.RoleSuperAdmin, model.RoleBusinessAdmin))

	adminUsers := users.Group("", middleware.RequireRole(model.RoleSuperAdmin))
	adminUsers.PATCH("/:id", handler.UpdateUser)
	adminUsers.POST("/:id/deactivate", handler.DeactivateUser)
	adminUsers.POST("/:id/activate", handler.ActivateUser)
	adminUsers.POST("/:id/reset-password", handler.ResetPassword)
	adminUsers.DELETE("/:id", handler.DeleteUser)

	// Notifications and audit trail
	notifications := api.Group("/notifications")
	notifications.GET("", handler.ListNotifications)
	notifications.POST("/:id/read", handler.MarkNotificationRead)
	notifications.POST("/read-all", handler.MarkAllNotificationsRead)
	notifications.DELETE("/:id", handler.ClearNotification)

	api.GET("/activities", handler.ListActivities,
		middleware.RequireRole(model.RoleSuperAdmin, model.RoleBusinessAdmin))

	// Catalog - tenant scoped
	categories := api.Group("/categories",
		middleware.RequireRole(model.RoleBusinessAdmin, model.RoleCashier, model.RoleStaff))
	categories.POST("", handler.CreateCategory)
	categories.GET("", handler.ListCategories)
	categories.PATCH("/:id", handler.UpdateCategory)
	categories.DELETE("/:id", handler.DeleteCategory)

	products := api.Group("/products",
		middleware.RequireRole(model.RoleBusinessAdmin, model.RoleCashier, model.RoleStaff))
	products.POST("", handler.CreateProduct)
	products.GET("", handler.ListProducts)
	products.GET("/low-stock", handler.LowStockProducts)
	products.GET("/:id", handler.GetProduct)
	products.PATCH("/:id", handler.UpdateProduct)
	products.DELETE("/:id", handler.DeleteProduct)

	// Sales - tenant scoped
	sales := api.Group("/sales",
		middleware.RequireRole(model.RoleBusinessAdmin, model.RoleCashier))
	sales.POST("", handler.CreateSale)
	sales.GET("", handler.ListSales)
	sales.GET("/:id", handler.GetSale)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
