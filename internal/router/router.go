// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/storefront-backend/internal/config"
	"github.com/javajoker/storefront-backend/internal/guard"
	"github.com/javajoker/storefront-backend/internal/handlers"
	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/middleware"
	"github.com/javajoker/storefront-backend/internal/utils"
)

const version = "1.0.0"

func Initialize(svc *Services, cfg *config.Config, limiters *middleware.Limiters) *gin.Engine {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc.Auth, svc.Cart)
	userHandler := handlers.NewUserHandler(svc.User)
	productHandler := handlers.NewProductHandler(svc.Product, svc.Storage)
	cartHandler := handlers.NewCartHandler(svc.Cart)
	checkoutHandler := handlers.NewCheckoutHandler(svc.Checkout)
	orderHandler := handlers.NewOrderHandler(svc.Order)
	adminHandler := handlers.NewAdminHandler(svc.Admin)
	sessionHandler := handlers.NewSessionHandler(guard.Default())

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(limiters.General.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"version":   version,
			"languages": i18n.GetSupportedLanguages(),
		})
	})

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.Use(limiters.Auth.Middleware())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
			auth.PUT("/password", middleware.AuthRequired(), authHandler.ChangePassword)
		}

		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.GET("/facets", productHandler.GetFacets)
			products.GET("/featured", productHandler.GetFeaturedProducts)
			products.GET("/best-sellers", productHandler.GetBestSellers)
			products.GET("/new-arrivals", productHandler.GetNewArrivals)
			products.GET("/:id", productHandler.GetProduct)
		}

		// Guests use these with an X-Session-ID header.
		cart := v1.Group("/cart")
		cart.Use(middleware.OptionalAuth())
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:product_id", cartHandler.UpdateItem)
			cart.DELETE("/items/:product_id", cartHandler.RemoveItem)
		}

		wishlist := v1.Group("/wishlist")
		wishlist.Use(middleware.OptionalAuth())
		{
			wishlist.GET("", cartHandler.GetWishlist)
			wishlist.POST("/items", cartHandler.AddToWishlist)
			wishlist.DELETE("/items/:product_id", cartHandler.RemoveFromWishlist)
			wishlist.POST("/items/:product_id/move-to-cart", cartHandler.MoveToCart)
		}

		checkout := v1.Group("/checkout")
		checkout.Use(middleware.AuthRequired(), limiters.Checkout.Middleware())
		{
			checkout.POST("", checkoutHandler.Begin)
			checkout.GET("", checkoutHandler.GetState)
			checkout.PUT("/address", checkoutHandler.SelectAddress)
			checkout.POST("/next", checkoutHandler.Next)
			checkout.POST("/back", checkoutHandler.Back)
			checkout.POST("/coupon", checkoutHandler.ApplyCoupon)
			checkout.DELETE("/coupon", checkoutHandler.RemoveCoupon)
			checkout.POST("/payment", checkoutHandler.StartPayment)
			checkout.POST("/payment/confirm", checkoutHandler.ConfirmPayment)
			checkout.POST("/payment/failure", checkoutHandler.ReportPaymentFailure)
		}

		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.GET("", orderHandler.ListOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/cancel", orderHandler.CancelOrder)
		}

		profile := v1.Group("/profile")
		profile.Use(middleware.AuthRequired())
		{
			profile.GET("", authHandler.GetProfile)
			profile.PUT("", userHandler.UpdateProfile)
			profile.GET("/addresses", userHandler.ListAddresses)
			profile.POST("/addresses", userHandler.CreateAddress)
			profile.PUT("/addresses/:id", userHandler.UpdateAddress)
			profile.DELETE("/addresses/:id", userHandler.DeleteAddress)
			profile.PUT("/addresses/:id/default", userHandler.SetDefaultAddress)
		}

		v1.GET("/session/route", middleware.OptionalAuth(), sessionHandler.Route)

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.AuditLog(svc.Admin))
		{
			admin.GET("/dashboard/stats", adminHandler.GetDashboardStats)

			admin.GET("/users", adminHandler.GetUsers)
			admin.PUT("/users/:id/status", adminHandler.UpdateUserStatus)

			admin.GET("/orders", orderHandler.AdminListOrders)
			admin.GET("/orders/:id", orderHandler.AdminGetOrder)
			admin.PUT("/orders/:id/status", orderHandler.UpdateOrderStatus)

			admin.POST("/products", productHandler.CreateProduct)
			admin.PUT("/products/:id", productHandler.UpdateProduct)
			admin.POST("/products/:id/images", limiters.Upload.Middleware(), productHandler.UploadProductImage)

			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		}
	}

	return r
}
