package order

import (
	"storefront_system/internal/domain"

	"github.com/shopspring/decimal"
)

// Store is the order persistence contract. TransitionIfPending is the
// idempotency guard of the whole package: it flips the status only when the
// row is still pending, inside one statement, and reports whether it won.
// Callback reconciliation and user cancellation both go through it, so a
// race between them resolves to exactly one winner and one refund.
type Store interface {
	Create(o *domain.Order) error
	ByID(id uint) (*domain.Order, error)
	ByReference(reference string) (*domain.Order, error)
	ListByUser(userID uint, f ListFilter) ([]domain.Order, int64, error)
	TransitionIfPending(orderID uint, status string, fulfillmentCode *string) (bool, error)
}

// UserStore is the slice of user persistence the saga needs.
type UserStore interface {
	UserByID(id uint) (*domain.User, error)
}

// ListFilter narrows and pages an order listing.
type ListFilter struct {
	Status   string // Empty matches every status
	Page     int
	PageSize int
}

// Catalog is the product/price capability consumed by the saga.
type Catalog interface {
	Product(id uint) (*domain.Product, error)
	ResolvePrice(productID uint, role string) (decimal.Decimal, error)
}

// Ledger is the wallet capability consumed by the saga and the reconciler.
type Ledger interface {
	Credit(userID uint, amount decimal.Decimal) (decimal.Decimal, error)
	Debit(userID uint, amount decimal.Decimal) (decimal.Decimal, error)
}
