package domain

import "github.com/shopspring/decimal"

// Order statuses. pending -> success and pending -> failed are the only
// transitions; terminal orders never change again. A refund is a wallet
// ledger entry, not an order status.
const (
	OrderPending = "pending"
	OrderSuccess = "success"
	OrderFailed  = "failed"
)

// Order Model — financial record, never deleted
type Order struct {
	ID                uint            `gorm:"primaryKey"`                  // Primary key
	UserID            uint            `gorm:"index;not null"`              // Foreign key to User
	ProductID         uint            `gorm:"not null"`                    // Foreign key to Product
	Quantity          int             `gorm:"not null"`                    // Units ordered
	Amount            decimal.Decimal `gorm:"type:decimal(20,2);not null"` // Total charged: unit price * quantity
	Status            string          `gorm:"type:varchar(16);index"`      // Order status, see Order* constants
	UpstreamReference string          `gorm:"uniqueIndex;not null"`        // Correlation id used by provider callbacks
	FulfillmentCode   *string         // Delivered code, set on success for code products
	CreatedAt         int64           `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
	UpdatedAt         int64           `gorm:"autoUpdateTime:milli"` // Timestamp of last update in milliseconds
}
