package api

import (
	"crypto/subtle"                    // Constant-time token comparison
	"net/http"                         // HTTP status codes
	"storefront_system/internal/order" // Callback reconciler

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// CallbackRequest is the provider's asynchronous fulfillment notification
type CallbackRequest struct {
	Reference string  `json:"reference" binding:"required"` // Correlation id from the dispatch
	Outcome   string  `json:"outcome" binding:"required"`   // success or failed
	Code      *string `json:"code"`                         // Delivered code, success only
}

// FulfillmentCallbackHandler receives provider callbacks and hands them to
// the reconciler. Duplicate callbacks are acknowledged with 200 and no
// side effects.
func FulfillmentCallbackHandler(reconciler *order.Reconciler, callbackToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// The provider authenticates with a shared token header
		token := c.GetHeader("X-Callback-Token")
		if subtle.ConstantTimeCompare([]byte(token), []byte(callbackToken)) != 1 {
			// Wrong or missing token, reject
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid callback token"})
			return
		}
		var req CallbackRequest // Bind JSON request to struct
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
		// Reconcile: guarded transition, refund on failure, no-op on duplicates
		if err := reconciler.HandleCallback(req.Reference, req.Outcome, req.Code); err != nil {
			logrus.WithFields(logrus.Fields{
				"reference": req.Reference, // Correlation id
				"outcome":   req.Outcome,   // Reported outcome
				"error":     err.Error(),   // Error message
			}).Error("Callback handling failed") // Log callback failure
			c.JSON(statusForError(err), gin.H{"error": err.Error()}) // Map to HTTP status
			return
		}
		// Acknowledge the callback
		c.JSON(http.StatusOK, gin.H{"message": "Callback processed"})
	}
}
