package order

import (
	"context"
	"sync"

	"storefront_system/internal/domain"
	"storefront_system/internal/upstream"

	"github.com/shopspring/decimal"
)

// --- In-memory fakes shared by the saga and reconciler tests ---

type mockUserStore struct {
	users map[uint]*domain.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[uint]*domain.User)}
}

func (m *mockUserStore) add(u domain.User) {
	m.users[u.ID] = &u
}

func (m *mockUserStore) UserByID(id uint) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// mockOrderStore guards everything with one mutex; TransitionIfPending is
// atomic under it, mirroring the conditional UPDATE of the real store.
type mockOrderStore struct {
	mu         sync.Mutex
	orders     map[uint]*domain.Order
	nextID     uint
	failCreate error
}

func newMockOrderStore() *mockOrderStore {
	return &mockOrderStore{orders: make(map[uint]*domain.Order), nextID: 1}
}

func (m *mockOrderStore) Create(o *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	o.ID = m.nextID
	m.nextID++
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *mockOrderStore) ByID(id uint) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderStore) ByReference(reference string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.orders {
		if o.UpstreamReference == reference {
			cp := *o
			return &cp, nil
		}
	}
	return nil, domain.ErrOrderNotFound
}

func (m *mockOrderStore) ListByUser(userID uint, f ListFilter) ([]domain.Order, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []domain.Order
	for _, o := range m.orders {
		if o.UserID != userID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		all = append(all, *o)
	}
	total := int64(len(all))
	start := (f.Page - 1) * f.PageSize
	if start > len(all) {
		start = len(all)
	}
	end := start + f.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (m *mockOrderStore) TransitionIfPending(orderID uint, status string, fulfillmentCode *string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || o.Status != domain.OrderPending {
		return false, nil
	}
	o.Status = status
	if fulfillmentCode != nil {
		code := *fulfillmentCode
		o.FulfillmentCode = &code
	}
	return true, nil
}

type fakeCatalog struct {
	products map[uint]*domain.Product
	prices   map[uint]map[string]decimal.Decimal // product id -> role -> unit price
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{products: make(map[uint]*domain.Product), prices: make(map[uint]map[string]decimal.Decimal)}
}

func (f *fakeCatalog) add(p domain.Product, price decimal.Decimal) {
	f.products[p.ID] = &p
	f.prices[p.ID] = map[string]decimal.Decimal{domain.RoleUser: price}
}

func (f *fakeCatalog) Product(id uint) (*domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeCatalog) ResolvePrice(productID uint, role string) (decimal.Decimal, error) {
	byRole, ok := f.prices[productID]
	if !ok {
		return decimal.Zero, domain.ErrPricingNotFound
	}
	price, ok := byRole[role]
	if !ok {
		return decimal.Zero, domain.ErrPricingNotFound
	}
	return price, nil
}

// fakeLedger tracks one balance per user and counts every movement so the
// tests can assert "at most one refund".
type fakeLedger struct {
	mu         sync.Mutex
	balances   map[uint]decimal.Decimal
	credits    int
	debits     int
	failCredit error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[uint]decimal.Decimal)}
}

func (f *fakeLedger) set(userID uint, balance decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[userID] = balance
}

func (f *fakeLedger) balance(userID uint) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID]
}

func (f *fakeLedger) creditCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.credits
}

func (f *fakeLedger) Credit(userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	if f.failCredit != nil {
		return decimal.Zero, f.failCredit
	}
	f.balances[userID] = f.balances[userID].Add(amount)
	f.credits++
	return f.balances[userID], nil
}

func (f *fakeLedger) Debit(userID uint, amount decimal.Decimal) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !amount.IsPositive() {
		return decimal.Zero, domain.ErrInvalidAmount
	}
	b, ok := f.balances[userID]
	if !ok {
		return decimal.Zero, domain.ErrWalletNotFound
	}
	if b.LessThan(amount) {
		return decimal.Zero, domain.ErrInsufficientFunds
	}
	f.balances[userID] = b.Sub(amount)
	f.debits++
	return f.balances[userID], nil
}

// fakeUpstream records every dispatched request and answers with a canned
// result or error.
type fakeUpstream struct {
	mu       sync.Mutex
	requests []upstream.Request
	result   *upstream.Result
	err      error
}

func (f *fakeUpstream) Dispatch(_ context.Context, req upstream.Request) (*upstream.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	if f.result != nil {
		return f.result, nil
	}
	return &upstream.Result{Reference: referenceOf(req)}, nil
}

func (f *fakeUpstream) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func referenceOf(req upstream.Request) string {
	switch r := req.(type) {
	case upstream.InstantCodeRequest:
		return r.Reference
	case upstream.PreorderCodeRequest:
		return r.Reference
	case upstream.GameTopupRequest:
		return r.Reference
	case upstream.MobileTopupRequest:
		return r.Reference
	case upstream.CashcardRequest:
		return r.Reference
	default:
		return req.(upstream.GenericRequest).Reference
	}
}
