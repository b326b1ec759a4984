package domain

import "github.com/shopspring/decimal"

// Ledger entry types
const (
	TxDeposit  = "deposit"  // Funds added to the wallet
	TxWithdraw = "withdraw" // Funds removed from the wallet
)

// WalletTransaction Model — append-only ledger row.
// The wallet balance is a projection of these rows: for every wallet,
// balance equals the sum of deposits minus the sum of withdrawals.
// Rows are never updated or deleted.
type WalletTransaction struct {
	ID        uint            `gorm:"primaryKey"`                  // Primary key
	WalletID  uint            `gorm:"index;not null"`              // Foreign key to Wallet
	Type      string          `gorm:"type:varchar(16);not null"`   // Entry type: deposit or withdraw
	Amount    decimal.Decimal `gorm:"type:decimal(20,2);not null"` // Entry amount, always positive
	CreatedAt int64           `gorm:"autoCreateTime:milli"`        // Timestamp of creation in milliseconds
}
