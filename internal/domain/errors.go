package domain

import "errors"

// Sentinel errors for the wallet ledger and the order saga. Handlers match
// them with errors.Is and map them to HTTP statuses.
var (
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")

	ErrUserNotFound     = errors.New("user not found")
	ErrAccountNotActive = errors.New("account is not active")

	ErrProductNotFound = errors.New("product not found")
	ErrPricingNotFound = errors.New("no price on file for product")
	ErrPriceMismatch   = errors.New("submitted price does not match catalog price")
	ErrValidation      = errors.New("invalid order input")

	ErrOrderNotFound   = errors.New("order not found")
	ErrNotOrderOwner   = errors.New("order belongs to another user")
	ErrOrderNotPending = errors.New("order is not pending")

	ErrUpstream = errors.New("upstream fulfillment failed")
)
