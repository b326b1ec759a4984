package domain

import "github.com/shopspring/decimal"

// Product types sold by the storefront. Only instant-code products are
// fulfilled synchronously; every other type waits for a provider callback.
const (
	TypeInstantCode  = "instant-code"  // Code returned by the provider immediately
	TypePreorderCode = "preorder-code" // Code delivered later via callback
	TypeGameTopup    = "game-topup"    // Top-up keyed by player UID
	TypeMobileTopup  = "mobile-topup"  // Top-up keyed by phone number
	TypeCashcard     = "cashcard"      // Cash card delivered via callback
)

// Price tiers. A user's role selects the tier: vip -> vip, agent -> agent,
// everyone else -> base.
const (
	TierBase  = "base"
	TierVIP   = "vip"
	TierAgent = "agent"
)

// Product Model
type Product struct {
	ID         uint   `gorm:"primaryKey"`                // Primary key
	Name       string `gorm:"not null"`                  // Display name
	Type       string `gorm:"type:varchar(32);not null"` // Product type, see Type* constants
	UpstreamID string `gorm:"not null"`                  // Product id at the upstream provider
	Enabled    bool   `gorm:"default:true"`              // Disabled products cannot be ordered
}

// ProductPrice Model — one row per product and tier
type ProductPrice struct {
	ID        uint            `gorm:"primaryKey"`                   // Primary key
	ProductID uint            `gorm:"uniqueIndex:idx_product_tier"` // Foreign key to Product
	Tier      string          `gorm:"uniqueIndex:idx_product_tier"` // Price tier: base, vip or agent
	UnitPrice decimal.Decimal `gorm:"type:decimal(20,2);not null"`  // Unit price for this tier
}
