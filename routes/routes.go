package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"warehouse-app/controllers"
	"warehouse-app/middleware"
	"warehouse-app/models"
)

func RegisterRoutes(router *gin.Engine) {
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	api := router.Group("/api")
	{
		// Auth routes (public)
		api.POST("/auth/register", controllers.Register)
		api.POST("/auth/login", controllers.Login)
		api.POST("/auth/logout", controllers.Logout)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireAuth())
	{
		protected.GET("/auth/me", controllers.Me)
		protected.GET("/state", controllers.GetState)

		// Dashboard routes
		protected.GET("/dashboard/revenue", controllers.GetRevenueTotals)
		protected.GET("/dashboard/chart", controllers.GetChartSeries)
		protected.GET("/dashboard/chart.png", controllers.GetChartPNG)
	}

	manage := protected.Group("")
	manage.Use(middleware.RequireRole(models.RoleOwner, models.RoleManager))
	{
		// Product routes
		manage.POST("/products", controllers.CreateProduct)
		manage.PATCH("/products/:id/price", controllers.UpdateProductPrice)
		manage.PATCH("/products/:id", controllers.UpdateProduct)
		manage.DELETE("/products/:id", controllers.DeleteProduct)

		// Receipt routes
		manage.POST("/receipts", controllers.CreateReceipt)
		manage.DELETE("/receipts/:id", controllers.DeleteReceipt)

		// Draft shipment routes
		manage.GET("/draft", controllers.GetDraft)
		manage.POST("/draft/lines", controllers.AddDraftLine)
		manage.PATCH("/draft/lines/:productId/quantity", controllers.SetDraftLineQuantity)
		manage.PATCH("/draft/lines/:productId/price", controllers.SetDraftLinePrice)
		manage.DELETE("/draft/lines/:productId", controllers.RemoveDraftLine)
		manage.DELETE("/draft", controllers.DiscardDraft)

		// Shipment routes
		manage.POST("/shipments", controllers.CreateShipment)
		manage.DELETE("/shipments/:id", controllers.DeleteShipment)
	}

	owner := protected.Group("")
	owner.Use(middleware.RequireRole(models.RoleOwner))
	{
		owner.POST("/memberships/role", controllers.UpdateMemberRole)
	}

	router.GET("/print/shipment/:id", middleware.RequireAuth(), controllers.PrintShipment)
}
