package order

import (
	"sync"
	"testing"

	"storefront_system/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Setup ---

type reconcilerFixture struct {
	reconciler *Reconciler
	orders     *mockOrderStore
	ledger     *fakeLedger
}

func setupReconcilerTest() *reconcilerFixture {
	f := &reconcilerFixture{
		orders: newMockOrderStore(),
		ledger: newFakeLedger(),
	}
	f.reconciler = NewReconciler(f.orders, f.ledger)
	return f
}

func (f *reconcilerFixture) addPendingOrder(userID uint, amount, reference string) uint {
	o := &domain.Order{
		UserID: userID, ProductID: 11, Quantity: 1,
		Amount: dec(amount), Status: domain.OrderPending, UpstreamReference: reference,
	}
	f.orders.Create(o)
	return o.ID
}

// --- Tests ---

func TestHandleCallback_SuccessStoresCode(t *testing.T) {
	f := setupReconcilerTest()
	f.ledger.set(1, dec("50"))
	id := f.addPendingOrder(1, "100", "ref-1")

	code := "CODE-42"
	err := f.reconciler.HandleCallback("ref-1", OutcomeSuccess, &code)
	require.NoError(t, err)

	o, _ := f.orders.ByID(id)
	assert.Equal(t, domain.OrderSuccess, o.Status)
	require.NotNil(t, o.FulfillmentCode)
	assert.Equal(t, "CODE-42", *o.FulfillmentCode)
	// Funds were already consumed at order creation, success moves no money
	assert.True(t, f.ledger.balance(1).Equal(dec("50")))
	assert.Equal(t, 0, f.ledger.creditCount())
}

func TestHandleCallback_FailureRefunds(t *testing.T) {
	f := setupReconcilerTest()
	// Post-debit state: the order of 100 was already paid for
	f.ledger.set(1, dec("50"))
	id := f.addPendingOrder(1, "100", "ref-2")

	err := f.reconciler.HandleCallback("ref-2", OutcomeFailed, nil)
	require.NoError(t, err)

	o, _ := f.orders.ByID(id)
	assert.Equal(t, domain.OrderFailed, o.Status)
	assert.True(t, f.ledger.balance(1).Equal(dec("150")))
}

func TestHandleCallback_DuplicateIsNoOp(t *testing.T) {
	f := setupReconcilerTest()
	f.ledger.set(1, dec("50"))
	id := f.addPendingOrder(1, "100", "ref-3")

	require.NoError(t, f.reconciler.HandleCallback("ref-3", OutcomeFailed, nil))
	// The provider retries the same callback twice more
	require.NoError(t, f.reconciler.HandleCallback("ref-3", OutcomeFailed, nil))
	require.NoError(t, f.reconciler.HandleCallback("ref-3", OutcomeFailed, nil))

	o, _ := f.orders.ByID(id)
	assert.Equal(t, domain.OrderFailed, o.Status)
	// Exactly one refund despite three callbacks
	assert.Equal(t, 1, f.ledger.creditCount())
	assert.True(t, f.ledger.balance(1).Equal(dec("150")))
}

func TestHandleCallback_LateSuccessAfterRefundIsDiscarded(t *testing.T) {
	f := setupReconcilerTest()
	f.ledger.set(1, dec("50"))
	id := f.addPendingOrder(1, "100", "ref-4")

	// The order already failed (e.g. dispatch timeout) and was refunded
	require.NoError(t, f.reconciler.HandleCallback("ref-4", OutcomeFailed, nil))

	// The provider later insists it succeeded; the guard discards it
	code := "LATE-1"
	require.NoError(t, f.reconciler.HandleCallback("ref-4", OutcomeSuccess, &code))

	o, _ := f.orders.ByID(id)
	assert.Equal(t, domain.OrderFailed, o.Status)
	assert.Nil(t, o.FulfillmentCode)
	assert.True(t, f.ledger.balance(1).Equal(dec("150")))
}

func TestHandleCallback_UnknownReference(t *testing.T) {
	f := setupReconcilerTest()

	err := f.reconciler.HandleCallback("no-such-ref", OutcomeSuccess, nil)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestCancelRacesCallback_OneWinner(t *testing.T) {
	f := setupReconcilerTest()
	f.ledger.set(1, dec("50"))
	id := f.addPendingOrder(1, "100", "ref-5")

	users := newMockUserStore()
	users.add(domain.User{ID: 1, Username: "alice", Role: domain.RoleUser, Status: domain.UserActive})
	saga := NewSaga(users, f.orders, newFakeCatalog(), f.ledger, &fakeUpstream{})

	var wg sync.WaitGroup
	var cancelErr, callbackErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, cancelErr = saga.CancelOrder(id, 1)
	}()
	go func() {
		defer wg.Done()
		callbackErr = f.reconciler.HandleCallback("ref-5", OutcomeSuccess, nil)
	}()
	wg.Wait()

	// The callback path never errors on losing the race
	require.NoError(t, callbackErr)

	o, _ := f.orders.ByID(id)
	if cancelErr == nil {
		// Cancellation won: order failed, one refund issued
		assert.Equal(t, domain.OrderFailed, o.Status)
		assert.Equal(t, 1, f.ledger.creditCount())
		assert.True(t, f.ledger.balance(1).Equal(dec("150")))
	} else {
		// Success confirmation won: cancellation observed non-pending, no refund
		assert.ErrorIs(t, cancelErr, domain.ErrOrderNotPending)
		assert.Equal(t, domain.OrderSuccess, o.Status)
		assert.Equal(t, 0, f.ledger.creditCount())
		assert.True(t, f.ledger.balance(1).Equal(dec("50")))
	}
}
