package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/veritrace/supplyview/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Program state (public read access)
		v1.GET("/state", handler.GetState)

		// Collection endpoints (public read access)
		v1.GET("/factories", handler.ListFactories)
		v1.GET("/products", handler.ListProducts)
		v1.GET("/sellers", handler.ListSellers)
		v1.GET("/warehouses", handler.ListWarehouses)
		v1.GET("/logistics", handler.ListLogistics)
		v1.GET("/inspectors", handler.ListInspectors)
		v1.GET("/transactions", handler.ListTransactions)
		v1.GET("/orders", handler.ListOrders)
		v1.GET("/seller-stocks", handler.ListSellerStocks)
		v1.GET("/customer-products", handler.ListCustomerProducts)

		// Single-record endpoints (public read access)
		v1.GET("/factories/:address", handler.GetFactory)
		v1.GET("/products/:address", handler.GetProduct)
		v1.GET("/orders/:address", handler.GetOrder)
		v1.GET("/users/:owner", handler.GetUser)

		// Dashboard endpoints (public read access)
		v1.GET("/dashboards/:role", handler.GetDashboard)

		// Submission endpoints (require authentication)
		v1.POST("/operations/fee", middleware.Auth(authCfg), handler.UpdatePlatformFee)
		v1.POST("/operations/withdraw", middleware.Auth(authCfg), handler.WithdrawBalance)
		v1.POST("/operations/register", middleware.Auth(authCfg), handler.RegisterUser)
	}
}
