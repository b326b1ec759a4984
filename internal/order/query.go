package order

import "storefront_system/internal/domain"

// Query is the read-only order surface: a customer can look at and list
// their own orders, nothing else.
type Query struct {
	orders Store
}

func NewQuery(orders Store) *Query {
	return &Query{orders: orders}
}

// Order returns one order, only to its owner.
func (q *Query) Order(orderID, userID uint) (*domain.Order, error) {
	o, err := q.orders.ByID(orderID)
	if err != nil {
		return nil, err
	}
	if o.UserID != userID {
		return nil, domain.ErrNotOrderOwner
	}
	return o, nil
}

// List returns a page of the user's orders plus the total count.
func (q *Query) List(userID uint, f ListFilter) ([]domain.Order, int64, error) {
	if f.Page <= 0 {
		f.Page = 1
	}
	if f.PageSize <= 0 || f.PageSize > 100 {
		f.PageSize = 20
	}
	return q.orders.ListByUser(userID, f)
}
