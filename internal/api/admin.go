package api

import (
	"context"                           // Context for Redis operations
	"net/http"                          // HTTP status codes
	"storefront_system/internal/domain" // Importing domain models
	"storefront_system/internal/order"  // Reconciler for manual overrides
	"storefront_system/internal/utils"  // Utility functions
	"strconv"                           // String conversion
	"strings"                           // String manipulation
	"time"                              // Time durations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Decimal money
	"github.com/sirupsen/logrus"    // Logging library
	"gorm.io/gorm"                  // GORM ORM library
)

// UserAdminResponse represents the user data returned to admin
type UserAdminResponse struct {
	ID       uint          `json:"id"`       // User ID
	Username string        `json:"username"` // Username
	Role     string        `json:"role"`     // User role
	Status   string        `json:"status"`   // Account status
	Wallet   domain.Wallet `json:"wallet"`   // Associated wallet
}

// ListUsersHandler returns all users with their wallet info
func ListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background() // Use background context for Redis
		// Create a cache key based on pagination parameters
		cacheKey := "admin:users:page=" + c.DefaultQuery("page", "1") + ":size=" + c.DefaultQuery("page_size", "20")
		// Try to get cached response
		var cached struct {
			Users      []UserAdminResponse `json:"users"`       // List of users
			Page       int                 `json:"page"`        // Current page
			PageSize   int                 `json:"page_size"`   // Page size
			Total      int64               `json:"total"`       // Total number of users
			TotalPages int                 `json:"total_pages"` // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"users":       cached.Users,      // List of users
				"page":        cached.Page,       // Current page
				"page_size":   cached.PageSize,   // Page size
				"total":       cached.Total,      // Total number of users
				"total_pages": cached.TotalPages, // Total pages
				"cached":      true,              // Indicate response is from cache
			})
			return
		}
		page := 1      // Default page number
		pageSize := 20 // Default page size
		if p := c.Query("page"); p != "" {
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			// If valid, set page size
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		offset := (page - 1) * pageSize // Calculate offset for pagination
		var total int64                 // Total user count
		// Fetch total user count and paginated users with wallet info
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"}) // Return on error
			return
		}
		var users []domain.User // Slice to hold users
		// Preload Wallet relation, apply offset and limit for pagination
		if err := db.Preload("Wallet").Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"}) // Return on error
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize // Calculate total pages
		// Prepare response data
		resp := make([]UserAdminResponse, len(users))
		// Map users to response format
		for i, u := range users {
			resp[i] = UserAdminResponse{
				ID:       u.ID,       // User ID
				Username: u.Username, // Username
				Role:     u.Role,     // User role
				Status:   u.Status,   // Account status
				Wallet:   u.Wallet,   // Associated wallet
			}
		}
		// Prepare final response data
		respData := gin.H{
			"users":       resp,       // List of users
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of users
			"total_pages": totalPages, // Total pages
			"cached":      false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// ListTransactionsHandler returns all ledger rows, with optional filtering by wallet, type, or date
func ListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		// Build cache key from all query params
		var keyParts []string // Parts of the cache key
		// Append each query parameter to the key parts
		for _, k := range []string{"wallet_id", "type", "from", "to", "page", "page_size"} {
			keyParts = append(keyParts, k+"="+c.DefaultQuery(k, "")) // Append key-value pair
		}
		// Join key parts to form the final cache key
		cacheKey := "admin:txs:" + strings.Join(keyParts, ":")
		var cached struct {
			Transactions []domain.WalletTransaction `json:"transactions"` // List of ledger rows
			Page         int                        `json:"page"`         // Current page
			PageSize     int                        `json:"page_size"`    // Page size
			Total        int64                      `json:"total"`        // Total number of rows
			TotalPages   int                        `json:"total_pages"`  // Total pages
		}

		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // List of ledger rows
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total number of rows
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,                // Indicate response is from cache
			})
			return
		}
		page := 1      // Default page number
		pageSize := 20 // Default page size
		// Check and set page number and size from query params
		if p := c.Query("page"); p != "" {
			// If valid, set page number
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			// If valid, set page size
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		offset := (page - 1) * pageSize                // Calculate offset for pagination
		query := db.Model(&domain.WalletTransaction{}) // Start building the query
		if walletID := c.Query("wallet_id"); walletID != "" {
			query = query.Where("wallet_id = ?", walletID) // Filter by wallet ID
		}
		if txType := c.Query("type"); txType != "" {
			query = query.Where("type = ?", txType) // Filter by entry type
		}
		if from := c.Query("from"); from != "" {
			query = query.Where("created_at >= ?", from) // Filter by start date
		}
		if to := c.Query("to"); to != "" {
			query = query.Where("created_at <= ?", to) // Filter by end date
		}
		var total int64 // Total row count
		// Get total count of rows matching the filters
		if err := query.Count(&total).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var txs []domain.WalletTransaction // Slice to hold ledger rows
		// Fetch paginated rows with filters applied
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&txs).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		respData := gin.H{
			"transactions": txs,        // List of ledger rows
			"page":         page,       // Current page
			"page_size":    pageSize,   // Page size
			"total":        total,      // Total number of rows
			"total_pages":  totalPages, // Total pages
			"cached":       false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}

// CreateProductRequest represents an admin product creation request
type CreateProductRequest struct {
	Name       string           `json:"name" binding:"required"`        // Display name
	Type       string           `json:"type" binding:"required"`        // Product type
	UpstreamID string           `json:"upstream_id" binding:"required"` // Provider product id
	PriceBase  decimal.Decimal  `json:"price_base" binding:"required"`  // Base tier price
	PriceVIP   *decimal.Decimal `json:"price_vip"`                      // Optional vip tier price
	PriceAgent *decimal.Decimal `json:"price_agent"`                    // Optional agent tier price
}

// CreateProductHandler creates a product together with its price rows
func CreateProductHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProductRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || !req.PriceBase.IsPositive() {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Validate the product type against the closed set
		switch req.Type {
		case domain.TypeInstantCode, domain.TypePreorderCode, domain.TypeGameTopup, domain.TypeMobileTopup, domain.TypeCashcard:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown product type"})
			return
		}
		product := domain.Product{
			Name:       req.Name,       // Display name
			Type:       req.Type,       // Product type
			UpstreamID: req.UpstreamID, // Provider product id
			Enabled:    true,           // New products sell immediately
		}
		// Create the product and its price rows in one transaction
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&product).Error; err != nil {
				return err // Return error to rollback
			}
			prices := []domain.ProductPrice{
				{ProductID: product.ID, Tier: domain.TierBase, UnitPrice: req.PriceBase},
			}
			if req.PriceVIP != nil {
				prices = append(prices, domain.ProductPrice{ProductID: product.ID, Tier: domain.TierVIP, UnitPrice: *req.PriceVIP})
			}
			if req.PriceAgent != nil {
				prices = append(prices, domain.ProductPrice{ProductID: product.ID, Tier: domain.TierAgent, UnitPrice: *req.PriceAgent})
			}
			return tx.Create(&prices).Error
		})
		if err != nil {
			// If creation fails, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"product": product}) // Return the created product
	}
}

// ManualCallbackRequest is an admin override of a pending order's outcome
type ManualCallbackRequest struct {
	Outcome string  `json:"outcome" binding:"required"` // success or failed
	Code    *string `json:"code"`                       // Delivered code, success only
}

// ManualCallbackHandler lets an admin resolve a pending order by hand. It
// goes through the reconciler's guarded procedure, so it can never double
// refund even if the provider callback races with it.
func ManualCallbackHandler(db *gorm.DB, reconciler *order.Reconciler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Parse the order id from the path
		orderID, err := strconv.Atoi(c.Param("id"))
		if err != nil || orderID <= 0 {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}
		var req ManualCallbackRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Outcome must be one of the two known values
		if req.Outcome != order.OutcomeSuccess && req.Outcome != order.OutcomeFailed {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown outcome"})
			return
		}
		var o domain.Order // Look up the order to get its reference
		if err := db.First(&o, orderID).Error; err != nil {
			// If order not found, return not found
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		// Resolve through the same guarded procedure as provider callbacks
		if err := reconciler.HandleCallback(o.UpstreamReference, req.Outcome, req.Code); err != nil {
			c.JSON(statusForError(err), gin.H{"error": err.Error()}) // Map to HTTP status
			return
		}
		// Log the manual override for the audit trail
		logrus.WithFields(logrus.Fields{
			"order_id":  o.ID,                // Order ID
			"reference": o.UpstreamReference, // Correlation id
			"outcome":   req.Outcome,         // Forced outcome
		}).Info("Manual callback applied")
		c.JSON(http.StatusOK, gin.H{"message": "Callback processed"})
	}
}

// ListAllOrdersHandler returns every order, with optional filtering by user or status
func ListAllOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := 1      // Default page number
		pageSize := 20 // Default page size
		// Check and set page number and size from query params
		if p := c.Query("page"); p != "" {
			// If valid, set page number
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			// If valid, set page size
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		offset := (page - 1) * pageSize    // Calculate offset for pagination
		query := db.Model(&domain.Order{}) // Start building the query
		if userID := c.Query("user_id"); userID != "" {
			query = query.Where("user_id = ?", userID) // Filter by user ID
		}
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status) // Filter by order status
		}
		var total int64 // Total order count
		// Get total count of orders matching the filters
		if err := query.Count(&total).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count orders"})
			return
		}
		var orders []domain.Order // Slice to hold orders
		// Fetch paginated orders with filters applied
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&orders).Error; err != nil {
			// If error occurs, return internal server error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		c.JSON(http.StatusOK, gin.H{
			"orders":      orders,     // List of orders
			"page":        page,       // Current page
			"page_size":   pageSize,   // Page size
			"total":       total,      // Total number of orders
			"total_pages": totalPages, // Total pages
		})
	}
}
