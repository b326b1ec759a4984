package api

import (
	"context"                          // Context for Redis operations
	"net/http"                         // HTTP status codes
	"storefront_system/internal/order" // Order saga and query services
	"storefront_system/internal/utils" // Utility functions
	"strconv"                          // String conversion
	"time"                             // Time durations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Decimal money

	"github.com/sirupsen/logrus" // Logging library
)

// CreateOrderRequest represents an order placement request
type CreateOrderRequest struct {
	ProductID   uint            `json:"product_id" binding:"required"` // Product to buy
	Quantity    int             `json:"quantity" binding:"required"`   // Units to buy
	UnitPrice   decimal.Decimal `json:"unit_price" binding:"required"` // Price shown to the customer
	PlayerUID   string          `json:"player_uid"`                    // Required for game top-ups
	PhoneNumber string          `json:"phone_number"`                  // Required for mobile top-ups
}

// invalidateOrderCache drops the cached order listings for a user
func invalidateOrderCache(ctx context.Context, rdb *redis.Client, userID uint) {
	prefix := "orders:user:" + strconv.Itoa(int(userID)) // Order listing prefix
	utils.DeleteCachePages(ctx, rdb, prefix, ":status:") // Invalidate paginated listing cache
}

// CreateOrderHandler runs the order saga for the authenticated user
func CreateOrderHandler(saga *order.Saga) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, exists := c.Get("userID")
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateOrderRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Run the saga: validate, debit, dispatch, persist, compensate on failure
		o, err := saga.CreateOrder(c.Request.Context(), order.CreateOrderInput{
			UserID:      userID.(uint),   // Buyer
			ProductID:   req.ProductID,   // Product
			Quantity:    req.Quantity,    // Units
			UnitPrice:   req.UnitPrice,   // Client-submitted price, checked against the catalog
			PlayerUID:   req.PlayerUID,   // Game top-up field
			PhoneNumber: req.PhoneNumber, // Mobile top-up field
		})
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id":    userID,        // User ID
				"product_id": req.ProductID, // Product ID
				"error":      err.Error(),   // Error message
			}).Error("Order creation failed") // Log order failure
			c.JSON(statusForError(err), gin.H{"error": err.Error()}) // Map to HTTP status
			return
		}
		// Invalidate wallet and order caches after the debit
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			ctx := context.Background() // Context for Redis operations
			invalidateWalletCache(ctx, rdb, userID.(uint))
			invalidateOrderCache(ctx, rdb, userID.(uint))
		}
		// Return the created order (pending or success)
		c.JSON(http.StatusCreated, gin.H{"order": o})
	}
}

// GetOrderHandler returns one of the authenticated user's orders
func GetOrderHandler(query *order.Query) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, exists := c.Get("userID")
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Parse the order id from the path
		orderID, err := strconv.Atoi(c.Param("id"))
		if err != nil || orderID <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}
		// Look up the order, owner only
		o, err := query.Order(uint(orderID), userID.(uint))
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()}) // Map to HTTP status
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": o}) // Return the order
	}
}

// ListOrdersHandler returns a page of the authenticated user's orders
func ListOrdersHandler(query *order.Query, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, exists := c.Get("userID")
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page := 1                   // Default page
		pageSize := 20              // Default page size
		status := c.Query("status") // Optional status filter
		// If page exists in query
		if p := c.Query("page"); p != "" {
			// Convert page to integer
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// If page_size exists in query
		if ps := c.Query("page_size"); ps != "" {
			// Convert page_size to integer
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size if valid
			}
		}
		// Redis cache key
		cacheKey := "orders:user:" + strconv.Itoa(int(userID.(uint))) +
			":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize) + ":status:" + status
		ctx := context.Background() // Context for Redis operations
		var cached gin.H            // Cached response
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			cached["cached"] = true
			c.JSON(http.StatusOK, cached)
			return
		}
		// Fetch the page from the query service
		orders, total, err := query.List(userID.(uint), order.ListFilter{
			Status:   status,   // Optional status filter
			Page:     page,     // Current page
			PageSize: pageSize, // Page size
		})
		if err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"orders":      orders,     // List of orders
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total orders
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Not from cache
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp) // Return order listing
	}
}

// CancelOrderHandler cancels one of the user's pending orders and refunds it
func CancelOrderHandler(saga *order.Saga) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, exists := c.Get("userID")
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		// Parse the order id from the path
		orderID, err := strconv.Atoi(c.Param("id"))
		if err != nil || orderID <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}
		// Cancel through the saga: guarded flip then refund
		o, err := saga.CancelOrder(uint(orderID), userID.(uint))
		if err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()}) // Map to HTTP status
			return
		}
		// Invalidate wallet and order caches after the refund
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			ctx := context.Background() // Context for Redis operations
			invalidateWalletCache(ctx, rdb, userID.(uint))
			invalidateOrderCache(ctx, rdb, userID.(uint))
		}
		c.JSON(http.StatusOK, gin.H{"order": o}) // Return the cancelled order
	}
}
