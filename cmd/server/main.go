package main

import (
	"context"                               // context package is needed for Redis operations
	"log"                                   // log package is needed for logging
	"storefront_system/internal/api"        // Custom package for API handlers
	"storefront_system/internal/catalog"    // Product catalog service
	"storefront_system/internal/config"     // Custom package for configuration
	"storefront_system/internal/middleware" // Custom package for middleware
	"storefront_system/internal/order"      // Order saga, reconciler and query services
	"storefront_system/internal/storage"    // GORM repositories
	"storefront_system/internal/upstream"   // Fulfillment provider client
	"storefront_system/internal/wallet"     // Wallet ledger service

	// For loading .env files
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Build the services around their repositories
	ledger := wallet.NewLedger(storage.NewWalletRepository(db))
	cat := catalog.NewCatalog(storage.NewCatalogRepository(db))
	orders := storage.NewOrderRepository(db)
	users := storage.NewUserRepository(db)
	provider := upstream.NewHTTPClient(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey, cfg.UpstreamTimeout)
	saga := order.NewSaga(users, orders, cat, ledger, provider)
	reconciler := order.NewReconciler(orders, ledger)
	query := order.NewQuery(orders)

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/user", api.RegisterHandler(db))            // Registration endpoint, creates the wallet too
	r.GET("/user", api.LoginHandler(db, cfg.JWTSecret)) // Login endpoint

	// Provider callback route (token protected, no JWT)
	r.POST("/callbacks/fulfillment", api.FulfillmentCallbackHandler(reconciler, cfg.CallbackToken))

	// Wallet routes (protected by JWT)
	walletGroup := r.Group("/wallet")
	// Protect wallet routes with JWT middleware and inject Redis client into context
	walletGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})
	walletGroup.GET("", api.GetWalletHandler(ledger, redisClient))                      // Balance endpoint
	walletGroup.POST("/deposit", api.DepositHandler(ledger))                            // Top-up endpoint
	walletGroup.GET("/transactions", api.GetTransactionHistoryHandler(db, redisClient)) // Ledger history endpoint

	// Order routes (protected by JWT)
	orderGroup := r.Group("/orders")
	orderGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})
	orderGroup.POST("", api.CreateOrderHandler(saga))             // Order creation endpoint
	orderGroup.GET("", api.ListOrdersHandler(query, redisClient)) // Order listing endpoint
	orderGroup.GET("/:id", api.GetOrderHandler(query))            // Order lookup endpoint
	orderGroup.POST("/:id/cancel", api.CancelOrderHandler(saga))  // Order cancellation endpoint

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(db))
	adminGroup.GET("/users", api.ListUsersHandler(db, redisClient))                    // List users endpoint
	adminGroup.GET("/transactions", api.ListTransactionsHandler(db, redisClient))      // List ledger rows endpoint
	adminGroup.GET("/orders", api.ListAllOrdersHandler(db))                            // List orders endpoint
	adminGroup.POST("/products", api.CreateProductHandler(db))                         // Product creation endpoint
	adminGroup.POST("/orders/:id/callback", api.ManualCallbackHandler(db, reconciler)) // Manual order resolution endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
