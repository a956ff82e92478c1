package router

import (
	"github.com/gin-gonic/gin"
	"github.com/orderdesk/backend/internal/domain/shared"
	"github.com/orderdesk/backend/internal/infrastructure/auth"
	"github.com/orderdesk/backend/internal/interfaces/http/handler"
	"github.com/orderdesk/backend/internal/interfaces/http/middleware"
)

// Config wires handlers and services into the route table
type Config struct {
	JWTService  *auth.JWTService
	System      *handler.SystemHandler
	Product     *handler.ProductHandler
	Order       *handler.OrderHandler
	Transaction *handler.TransactionHandler
}

// Setup registers all routes on the engine. Role middleware guards the
// privileged endpoints; per-record ownership checks live in the services.
func Setup(engine *gin.Engine, cfg Config) {
	engine.GET("/health", cfg.System.Health)
	engine.GET("/ready", cfg.System.Ready)

	api := engine.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg.JWTService))

	api.GET("/health", cfg.System.Health)

	products := api.Group("/products")
	{
		products.GET("", cfg.Product.List)
		products.GET("/:id", cfg.Product.Get)
		products.POST("", middleware.RequireRoles(shared.RoleSales, shared.RoleManager, shared.RoleAdmin), cfg.Product.Create)
		products.PUT("/:id", middleware.RequireRoles(shared.RoleSales, shared.RoleManager, shared.RoleAdmin), cfg.Product.Update)
		products.POST("/:id/approve", middleware.RequirePrivileged(), cfg.Product.Approve)
		products.POST("/:id/reject", middleware.RequirePrivileged(), cfg.Product.Reject)
		products.POST("/:id/stock", middleware.RequireRoles(shared.RoleSales, shared.RoleManager, shared.RoleAdmin), cfg.Product.AdjustStock)
	}

	orders := api.Group("/orders")
	{
		orders.GET("", cfg.Order.List)
		orders.GET("/:id", cfg.Order.Get)
		orders.POST("", middleware.RequireRoles(shared.RoleBuyer), cfg.Order.Place)
		orders.POST("/:id/verify", middleware.RequirePrivileged(), cfg.Order.VerifyPayment)
		orders.POST("/:id/ship", middleware.RequirePrivileged(), cfg.Order.MarkShipped)
		orders.POST("/:id/confirm", cfg.Order.ConfirmDelivery)
		orders.POST("/:id/payout", middleware.RequirePrivileged(), cfg.Order.ProcessPayout)
		orders.POST("/:id/override", middleware.RequireRoles(shared.RoleAdmin), cfg.Order.OverrideStatus)
	}

	transactions := api.Group("/transactions")
	{
		transactions.GET("", cfg.Transaction.List)
		transactions.GET("/summary", middleware.RequirePrivileged(), cfg.Transaction.Summary)
		transactions.GET("/trend", middleware.RequirePrivileged(), cfg.Transaction.Trend)
		transactions.GET("/top-buyers", middleware.RequirePrivileged(), cfg.Transaction.TopBuyers)
		transactions.GET("/balance", middleware.RequirePrivileged(), cfg.Transaction.Balance)
		transactions.GET("/:id", cfg.Transaction.Get)
	}
}
