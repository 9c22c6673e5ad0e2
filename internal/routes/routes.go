package routes

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopkart/shopkart-api/internal/credential"
	"github.com/shopkart/shopkart-api/internal/handlers"
	"github.com/shopkart/shopkart-api/internal/middleware"
)

// CORSMiddleware allows the configured storefront origins to call the API
// with a bearer token.
func CORSMiddleware(origins []string) gin.HandlerFunc {
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Cache-Control", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// registerValidators installs the custom binding tags used by the handlers.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		log.Println("WARNING: binding engine is not validator/v10; custom tags not registered")
		return
	}
	if err := credential.RegisterValidation(v); err != nil {
		log.Printf("WARNING: failed to register %q validator: %v", credential.Tag, err)
	}
}

func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()
	registerValidators()

	// --- APPLY THE CORS GUARD ---
	// This must be the very first thing the router uses
	router.Use(CORSMiddleware(h.Config.CORSOrigins))

	// Uploaded product images
	router.Static("/uploads", h.Config.UploadDir)

	authed := middleware.AuthMiddleware(h.DB, h.Tokens)
	admin := middleware.AdminMiddleware()

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		v1.GET("/config/paypal", h.GetPayPalConfig)

		// --- User Routes ---
		users := v1.Group("/users")
		{
			users.POST("/signup", h.Signup)
			users.POST("/login", h.Login)

			users.GET("/profile", authed, h.GetProfile)
			users.PUT("/profile", authed, h.UpdateProfile)

			users.GET("", authed, admin, h.GetAllUsers)
			users.GET("/:id", authed, admin, h.GetUserByID)
			users.PUT("/:id", authed, admin, h.UpdateUser)
			users.DELETE("/:id", authed, admin, h.DeleteUser)
		}

		// --- Product Routes ---
		products := v1.Group("/products")
		{
			products.GET("", h.GetProducts)
			products.GET("/top", h.GetTopProducts)
			products.GET("/:id", h.GetProduct)
			products.POST("/:id/reviews", authed, h.CreateProductReview)

			products.POST("", authed, admin, h.CreateProduct)
			products.PUT("/:id", authed, admin, h.UpdateProduct)
			products.DELETE("/:id", authed, admin, h.DeleteProduct)
		}

		// --- Category Routes ---
		categories := v1.Group("/categories")
		{
			categories.GET("", h.GetAllCategories)
			categories.POST("", authed, admin, h.CreateCategory)
			categories.PUT("/:id", authed, admin, h.UpdateCategory)
			categories.DELETE("/:id", authed, admin, h.DeleteCategory)
		}

		// --- Cart Routes (Public, addressed by cart id) ---
		carts := v1.Group("/carts")
		{
			carts.POST("", h.CreateCart)
			carts.GET("/:cartId", h.GetCart)
			carts.DELETE("/:cartId", h.ResetCart)

			carts.POST("/:cartId/items", h.AddToCart)
			carts.DELETE("/:cartId/items", h.ClearCart)
			carts.PUT("/:cartId/items/:productId", h.UpdateCartItem)
			carts.DELETE("/:cartId/items/:productId", h.RemoveCartItem)

			carts.PUT("/:cartId/shipping", h.SaveShippingAddress)
			carts.PUT("/:cartId/payment", h.SavePaymentMethod)

			carts.POST("/:cartId/checkout", authed, h.Checkout)
		}

		// --- Order Routes (Login Required) ---
		orders := v1.Group("/orders")
		orders.Use(authed)
		{
			orders.POST("", h.CreateOrder)
			orders.GET("/myorders", h.GetMyOrders)
			orders.GET("/:id", h.GetOrderByID)
			orders.PUT("/:id/pay", h.PayOrder)
			orders.DELETE("/:id", h.DeleteOrder)

			orders.GET("", admin, h.GetAllOrders)
			orders.PUT("/:id/status", admin, h.UpdateOrderStatus)
		}

		// --- Admin-Only Routes ---
		adminGroup := v1.Group("/admin")
		adminGroup.Use(authed, admin)
		{
			adminGroup.GET("/dashboard-stats", h.GetAdminStats)
		}

		v1.POST("/upload", authed, admin, h.UploadFile)
	}

	return router
}
