package order

import (
	"testing"

	"storefront_system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery_OrderOwnershipEnforced(t *testing.T) {
	orders := newMockOrderStore()
	orders.Create(&domain.Order{UserID: 1, Amount: dec("100"), Status: domain.OrderPending, UpstreamReference: "ref-q1"})
	q := NewQuery(orders)

	o, err := q.Order(1, 1)
	require.NoError(t, err)
	assert.Equal(t, uint(1), o.UserID)

	_, err = q.Order(1, 2)
	assert.ErrorIs(t, err, domain.ErrNotOrderOwner)

	_, err = q.Order(99, 1)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestQuery_ListFiltersByStatus(t *testing.T) {
	orders := newMockOrderStore()
	orders.Create(&domain.Order{UserID: 1, Amount: dec("10"), Status: domain.OrderPending, UpstreamReference: "ref-q2"})
	orders.Create(&domain.Order{UserID: 1, Amount: dec("20"), Status: domain.OrderSuccess, UpstreamReference: "ref-q3"})
	orders.Create(&domain.Order{UserID: 2, Amount: dec("30"), Status: domain.OrderPending, UpstreamReference: "ref-q4"})
	q := NewQuery(orders)

	// Defaults kick in for a zero filter
	all, total, err := q.List(1, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, all, 2)

	pending, total, err := q.List(1, ListFilter{Status: domain.OrderPending})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, pending, 1)
	assert.Equal(t, "ref-q2", pending[0].UpstreamReference)
}
