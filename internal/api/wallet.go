package api

import (
	"context"                           // Context for Redis operations
	"net/http"                          // HTTP status codes
	"storefront_system/internal/domain" // Importing domain models
	"storefront_system/internal/utils"  // Utility functions
	"storefront_system/internal/wallet" // Wallet ledger service
	"strconv"                           // String conversion
	"time"                              // Time durations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Decimal money
	"gorm.io/gorm"                  // GORM ORM library

	"github.com/sirupsen/logrus" // Logging library
)

// DepositRequest represents a wallet top-up request
type DepositRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"` // Deposit amount
}

// invalidateWalletCache drops the cached balance and transaction history for a user
func invalidateWalletCache(ctx context.Context, rdb *redis.Client, userID uint) {
	userKey := "wallet:user:" + strconv.Itoa(int(userID))        // Wallet cache key
	txKeyPrefix := "txhistory:user:" + strconv.Itoa(int(userID)) // Transaction history prefix
	_ = utils.DeleteCache(ctx, rdb, userKey)                     // Invalidate wallet cache
	utils.DeleteCachePages(ctx, rdb, txKeyPrefix, "")            // Invalidate paginated txhistory cache
}

// DepositHandler allows a user to top up their wallet through the ledger
func DepositHandler(ledger *wallet.Ledger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, exists := c.Get("userID")
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req DepositRequest // Bind JSON request to struct
		// Validate request
		if err := c.ShouldBindJSON(&req); err != nil || !req.Amount.IsPositive() {
			// If invalid, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		// The ledger writes the balance and the deposit row in one transaction
		balance, err := ledger.Credit(userID.(uint), req.Amount)
		if err != nil {
			// Log the error with context
			logrus.WithFields(logrus.Fields{
				"user_id": userID,      // User ID
				"amount":  req.Amount,  // Deposit amount
				"error":   err.Error(), // Error message
			}).Error("Deposit failed") // Log deposit failure
			c.JSON(statusForError(err), gin.H{"error": "Deposit failed"}) // Map to HTTP status
			return
		}
		// Invalidate wallet and transaction history cache
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			invalidateWalletCache(context.Background(), rdb, userID.(uint))
		}
		// Return success response with the new balance
		c.JSON(http.StatusOK, gin.H{"message": "Deposit successful", "balance": balance})
	}
}

// GetWalletHandler returns the wallet balance for the authenticated user
func GetWalletHandler(ledger *wallet.Ledger, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, exists := c.Get("userID") // Get userID from context
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		ctx := context.Background()                                   // Context for Redis operations
		cacheKey := "wallet:user:" + strconv.Itoa(int(userID.(uint))) // Cache key for wallet
		var cached decimal.Decimal                                    // Cached balance
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)     // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			// Return cached balance
			c.JSON(http.StatusOK, gin.H{"balance": cached, "cached": true})
			return
		}
		// If not in cache, ask the ledger
		balance, err := ledger.Balance(userID.(uint))
		if err != nil {
			// Return not found if wallet doesn't exist
			c.JSON(statusForError(err), gin.H{"error": "Wallet not found"})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, balance, 60*time.Second)   // Cache the balance for 60 seconds
		c.JSON(http.StatusOK, gin.H{"balance": balance, "cached": false}) // Return balance
	}
}

// GetTransactionHistoryHandler returns the ledger rows for the authenticated user's wallet
func GetTransactionHistoryHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get userID from context
		userID, exists := c.Get("userID")
		// Check if userID exists in context
		if !exists {
			// If not, return unauthorized
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var w domain.Wallet // Get user's wallet
		// Query wallet by user ID
		if err := db.Where("user_id = ?", userID).First(&w).Error; err != nil {
			// Return not found if wallet doesn't exist
			c.JSON(http.StatusNotFound, gin.H{"error": "Wallet not found"})
			return
		}
		page := 1      // Default page
		pageSize := 20 // Default page size
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
		offset := (page - 1) * pageSize // Calculate offset
		// Redis cache key
		cacheKey := "txhistory:user:" + strconv.Itoa(int(userID.(uint))) + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			Transactions []domain.WalletTransaction `json:"transactions"` // List of ledger rows
			Page         int                        `json:"page"`         // Current page
			PageSize     int                        `json:"page_size"`    // Page size
			Total        int64                      `json:"total"`        // Total ledger rows
			TotalPages   int                        `json:"total_pages"`  // Total pages
		}
		// Try to get from cache
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		// If found in cache, return it
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // Cached ledger rows
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total ledger rows
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,
			})
			return
		}
		var total int64 // Total count of ledger rows
		// Count total rows for pagination
		if err := db.Model(&domain.WalletTransaction{}).
			Where("wallet_id = ?", w.ID).
			Count(&total).Error; err != nil {
			// If counting fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var transactions []domain.WalletTransaction // Slice to hold ledger rows
		// Fetch paginated ledger rows
		if err := db.Where("wallet_id = ?", w.ID).
			Order("created_at desc").
			Offset(offset).
			Limit(pageSize).
			Find(&transactions).Error; err != nil {
			// If fetching fails, return error
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		// Calculate total pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		resp := gin.H{
			"transactions": transactions, // List of ledger rows
			"page":         page,         // Current page
			"page_size":    pageSize,     // Page size
			"total":        total,        // Total ledger rows
			"total_pages":  totalPages,   // Total pages
			"cached":       false,        // Not from cache
		}
		// Cache the result for 60 seconds
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp) // Return transaction history
	}
}
