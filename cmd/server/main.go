package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"stayhub/internal/app"
	"stayhub/internal/config"
	"stayhub/internal/gateway"
	"stayhub/internal/handler"
	internalRedis "stayhub/internal/redis"
	"stayhub/internal/repository/postgres"
	"stayhub/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	eventStore := internalRedis.NewEventStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	userRepo := postgres.NewUserRepository(db)
	listingRepo := postgres.NewListingRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	txManager := postgres.NewTxManager(db)

	// Initialize gateway boundary.
	stripeClient := gateway.NewStripeClient(cfg.Stripe.SecretKey, cfg.Stripe.Timeout)
	webhookVerifier := gateway.NewWebhookVerifier(cfg.Stripe.WebhookSecret)

	// Initialize services.
	notificationService := service.NewNotificationService(notificationRepo)
	listingService := service.NewListingService(listingRepo, cacheStore)
	bookingService := service.NewBookingService(bookingRepo, listingRepo, notificationService)
	paymentService := service.NewPaymentService(
		paymentRepo,
		bookingRepo,
		listingRepo,
		txManager,
		stripeClient,
		webhookVerifier,
		notificationService,
		lockStore,
		eventStore,
	)

	// Initialize handlers.
	userHandler := handler.NewUserHandler(userRepo)
	listingHandler := handler.NewListingHandler(listingService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	webhookHandler := handler.NewWebhookHandler(paymentService)
	notificationHandler := handler.NewNotificationHandler(notificationService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		UserHandler:         userHandler,
		ListingHandler:      listingHandler,
		BookingHandler:      bookingHandler,
		PaymentHandler:      paymentHandler,
		WebhookHandler:      webhookHandler,
		NotificationHandler: notificationHandler,
		RedisClient:         redisClient,
		NewRelicApp:         nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
