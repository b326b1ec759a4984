package storage

import (
	"errors"

	"storefront_system/internal/domain"
	"storefront_system/internal/order"

	"gorm.io/gorm"
)

// OrderRepository is the GORM-backed order.Store.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(o *domain.Order) error {
	return r.db.Create(o).Error
}

func (r *OrderRepository) ByID(id uint) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.First(&o, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ByReference(reference string) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.Where("upstream_reference = ?", reference).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepository) ListByUser(userID uint, f order.ListFilter) ([]domain.Order, int64, error) {
	q := r.db.Model(&domain.Order{}).Where("user_id = ?", userID)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var orders []domain.Order
	err := q.Order("created_at desc").
		Offset((f.Page - 1) * f.PageSize).
		Limit(f.PageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// TransitionIfPending flips the status in one conditional UPDATE guarded on
// the current status. RowsAffected decides who won a race: the statement is
// atomic at the database, so of any concurrent cancellation/callback pair
// exactly one observes a pending row.
func (r *OrderRepository) TransitionIfPending(orderID uint, status string, fulfillmentCode *string) (bool, error) {
	updates := map[string]any{"status": status}
	if fulfillmentCode != nil {
		updates["fulfillment_code"] = *fulfillmentCode
	}
	res := r.db.Model(&domain.Order{}).
		Where("id = ? AND status = ?", orderID, domain.OrderPending).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
