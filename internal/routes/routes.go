package routes

import (
	"net/http"

	"github.com/freshtrack-app/freshtrack-golang/internal/handlers"
	"github.com/freshtrack-app/freshtrack-golang/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware tells the browser the local frontend is allowed to talk
// to us, including with the Authorization header.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "http://localhost:5173")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight requests get an empty 204.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware())

	v1 := router.Group("/v1")
	{
		// --- Status Route (Public) ---
		v1.GET("/status", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server Is Running"})
		})

		// --- Auth Routes (Public) ---
		v1.POST("/auth/signup", h.Signup)
		v1.POST("/auth/login", h.Login)

		// --- Live Notification Session ---
		// Authenticates itself via the access_token query parameter, so it
		// sits outside the Bearer middleware.
		v1.GET("/notifications/ws", h.NotificationsWS)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware())
		{
			auth.GET("/auth/profile", h.GetProfile)

			// --- Warehouse Product Routes ---
			auth.POST("/products", h.AddProduct)
			auth.GET("/products", h.GetProducts)
			auth.GET("/products/scan/:barcode", h.ScanBarcode)
			auth.PUT("/products/:id", h.UpdateProduct)
			auth.DELETE("/products/:id", h.DeleteProduct)

			// --- User Inventory Routes ---
			inventory := auth.Group("/inventory")
			{
				inventory.POST("", h.AddInventoryItem)
				inventory.GET("", h.GetInventoryItems)
				inventory.PUT("/:id", h.UpdateInventoryItem)
				inventory.DELETE("/:id", h.DeleteInventoryItem)
				inventory.POST("/bulk", h.BulkAddInventoryItems)
			}

			// --- Detection Route ---
			auth.POST("/detection/detect", h.DetectImage)

			// --- Notification Routes ---
			auth.GET("/notifications", h.GetMyNotifications)
			auth.PATCH("/notifications/:id/read", h.MarkNotificationAsRead)

			// --- Stats Routes ---
			stats := auth.Group("/stats")
			{
				stats.GET("/expired-products", h.GetExpiredTrend)
				stats.GET("/expiry-trends", h.GetExpiryTrends)
				stats.GET("/wastage-category", h.GetWastageByCategory)
				stats.GET("/wasted-vs-eaten", h.GetWastedVsActive)
				stats.GET("/nutrients/:productId", h.GetNutrients)
			}
		}
	}

	return router
}
