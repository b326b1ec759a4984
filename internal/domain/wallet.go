package domain

import "github.com/shopspring/decimal"

// Wallet Model
type Wallet struct {
	ID      uint            `gorm:"primaryKey"`                  // Primary key
	UserID  uint            `gorm:"uniqueIndex"`                 // Foreign key to User, one wallet per user
	Balance decimal.Decimal `gorm:"type:decimal(20,2);not null"` // Wallet balance, never negative
}
