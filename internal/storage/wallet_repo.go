package storage

import (
	"errors"

	"storefront_system/internal/domain"
	"storefront_system/internal/wallet"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WalletRepository is the GORM-backed wallet.Repository. Every mutation
// runs inside one database transaction holding a row lock on the wallet,
// so concurrent credits/debits against the same wallet serialize and lost
// updates cannot happen.
type WalletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

func (r *WalletRepository) WithTx(fn func(tx wallet.Tx) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&walletTx{tx: tx})
	})
}

func (r *WalletRepository) WalletByUserID(userID uint) (*domain.Wallet, error) {
	var w domain.Wallet
	if err := r.db.Where("user_id = ?", userID).First(&w).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	return &w, nil
}

// walletTx runs inside one gorm transaction
type walletTx struct {
	tx *gorm.DB
}

// LockWallet reads the wallet row with SELECT ... FOR UPDATE; the lock is
// held until the surrounding transaction commits or rolls back.
func (t *walletTx) LockWallet(userID uint) (*domain.Wallet, error) {
	var w domain.Wallet
	err := t.tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&w).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (t *walletTx) SaveBalance(walletID uint, balance decimal.Decimal) error {
	return t.tx.Model(&domain.Wallet{}).
		Where("id = ?", walletID).
		Update("balance", balance).Error
}

func (t *walletTx) AppendEntry(entry *domain.WalletTransaction) error {
	return t.tx.Create(entry).Error
}
