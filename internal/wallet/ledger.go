package wallet

import (
	"storefront_system/internal/domain"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Tx is the set of operations available inside one wallet transaction.
// LockWallet must return the row locked against concurrent mutation until
// the surrounding transaction commits, so two debits against the same
// wallet serialize and cannot jointly overdraw it.
type Tx interface {
	LockWallet(userID uint) (*domain.Wallet, error)
	SaveBalance(walletID uint, balance decimal.Decimal) error
	AppendEntry(entry *domain.WalletTransaction) error
}

// Repository is the persistence contract of the ledger.
type Repository interface {
	WithTx(fn func(tx Tx) error) error
	WalletByUserID(userID uint) (*domain.Wallet, error)
}

// Ledger owns all wallet balance mutation. Every successful credit or debit
// appends exactly one ledger row in the same transaction that writes the
// balance, keeping the balance column in agreement with the ledger.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) *Ledger {
	return &Ledger{repo: repo}
}

// Balance returns the current balance of the user's wallet
func (l *Ledger) Balance(userID uint) (decimal.Decimal, error) {
	w, err := l.repo.WalletByUserID(userID)
	if err != nil {
		return decimal.Zero, err
	}
	return w.Balance, nil
}

// Credit adds amount to the user's wallet and appends a deposit row.
// Returns the new balance.
func (l *Ledger) Credit(userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	return l.mutate(userID, amount, domain.TxDeposit)
}

// Debit removes amount from the user's wallet and appends a withdraw row.
// Fails with ErrInsufficientFunds, writing nothing, if the balance does not
// cover the amount. Returns the new balance.
func (l *Ledger) Debit(userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	return l.mutate(userID, amount, domain.TxWithdraw)
}

func (l *Ledger) mutate(userID uint, amount decimal.Decimal, txType string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	var newBalance decimal.Decimal
	err := l.repo.WithTx(func(tx Tx) error {
		w, err := tx.LockWallet(userID)
		if err != nil {
			return err
		}
		if txType == domain.TxWithdraw {
			if w.Balance.LessThan(amount) {
				return domain.ErrInsufficientFunds
			}
			newBalance = w.Balance.Sub(amount)
		} else {
			newBalance = w.Balance.Add(amount)
		}
		if err := tx.SaveBalance(w.ID, newBalance); err != nil {
			return err
		}
		return tx.AppendEntry(&domain.WalletTransaction{
			WalletID: w.ID,
			Type:     txType,
			Amount:   amount,
		})
	})
	if err != nil {
		return decimal.Zero, err
	}
	// Log every money movement
	logrus.WithFields(logrus.Fields{
		"user_id":   userID,
		"amount":    amount.String(),
		"type":      txType,
		"balance":   newBalance.String(),
		"timestamp": time.Now().Format(time.RFC3339),
	}).Info("Wallet mutation")
	return newBalance, nil
}
