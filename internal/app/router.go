package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"stayhub/internal/handler"
	"stayhub/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	UserHandler         *handler.UserHandler
	ListingHandler      *handler.ListingHandler
	BookingHandler      *handler.BookingHandler
	PaymentHandler      *handler.PaymentHandler
	WebhookHandler      *handler.WebhookHandler
	NotificationHandler *handler.NotificationHandler
	RedisClient         *redis.Client
	NewRelicApp         *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// User routes.
		users := v1.Group("/users")
		{
			users.POST("/register", deps.UserHandler.Register)
			users.GET("", deps.UserHandler.GetAll)
		}

		// Listing routes.
		listings := v1.Group("/listings")
		{
			listings.POST("", deps.ListingHandler.CreateListing)
			listings.GET("", deps.ListingHandler.GetAll)
			listings.GET("/:id", deps.ListingHandler.GetListing)
		}

		// Booking routes.
		bookings := v1.Group("/bookings")
		{
			bookings.POST("", deps.BookingHandler.CreateBooking)
			bookings.GET("", deps.BookingHandler.GetMyBookings)
			bookings.GET("/:id", deps.BookingHandler.GetBooking)
			bookings.POST("/:id/cancel", deps.BookingHandler.CancelBooking)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.POST("", deps.PaymentHandler.InitiatePayment)
			payments.POST("/intent", deps.PaymentHandler.CreatePaymentIntent)
			payments.POST("/intent/:id/cancel", deps.PaymentHandler.CancelPaymentIntent)
			payments.POST("/confirm", deps.PaymentHandler.ConfirmPayment)
			payments.POST("/:id/refund", deps.PaymentHandler.RefundPayment)
			payments.GET("/:id", deps.PaymentHandler.GetPayment)
		}

		// Notification routes.
		v1.GET("/notifications", deps.NotificationHandler.GetMine)

		// Gateway webhook. Signature verification happens inside the
		// handler; the idempotency middleware skips this path.
		v1.POST("/webhooks/stripe", deps.WebhookHandler.HandleStripeWebhook)
	}

	return router
}
