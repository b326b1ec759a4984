package catalog

import (
	"testing"

	"storefront_system/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCatalogRepo struct {
	products map[uint]*domain.Product
	prices   map[uint]map[string]decimal.Decimal // product id -> tier -> price
}

func newMockCatalogRepo() *mockCatalogRepo {
	return &mockCatalogRepo{products: make(map[uint]*domain.Product), prices: make(map[uint]map[string]decimal.Decimal)}
}

func (m *mockCatalogRepo) addProduct(p domain.Product) {
	m.products[p.ID] = &p
	m.prices[p.ID] = make(map[string]decimal.Decimal)
}

func (m *mockCatalogRepo) setPrice(productID uint, tier string, price decimal.Decimal) {
	m.prices[productID][tier] = price
}

func (m *mockCatalogRepo) ProductByID(id uint) (*domain.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (m *mockCatalogRepo) PriceRow(productID uint, tier string) (*domain.ProductPrice, error) {
	byTier, ok := m.prices[productID]
	if !ok {
		return nil, domain.ErrPricingNotFound
	}
	price, ok := byTier[tier]
	if !ok {
		return nil, domain.ErrPricingNotFound
	}
	return &domain.ProductPrice{ProductID: productID, Tier: tier, UnitPrice: price}, nil
}

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestProduct_DisabledIsNotFound(t *testing.T) {
	repo := newMockCatalogRepo()
	repo.addProduct(domain.Product{ID: 1, Name: "Gone", Type: domain.TypeCashcard, Enabled: false})
	c := NewCatalog(repo)

	_, err := c.Product(1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestResolvePrice_TierPerRole(t *testing.T) {
	repo := newMockCatalogRepo()
	repo.addProduct(domain.Product{ID: 1, Name: "Topup", Type: domain.TypeGameTopup, Enabled: true})
	repo.setPrice(1, domain.TierBase, dec("100"))
	repo.setPrice(1, domain.TierVIP, dec("95"))
	repo.setPrice(1, domain.TierAgent, dec("90"))
	c := NewCatalog(repo)

	for role, want := range map[string]decimal.Decimal{
		domain.RoleUser:  dec("100"),
		domain.RoleAdmin: dec("100"),
		domain.RoleVIP:   dec("95"),
		domain.RoleAgent: dec("90"),
	} {
		price, err := c.ResolvePrice(1, role)
		require.NoError(t, err, role)
		assert.True(t, price.Equal(want), "role %s: got %s want %s", role, price, want)
	}
}

func TestResolvePrice_MissingTierFallsBackToBase(t *testing.T) {
	repo := newMockCatalogRepo()
	repo.addProduct(domain.Product{ID: 1, Name: "Topup", Type: domain.TypeGameTopup, Enabled: true})
	repo.setPrice(1, domain.TierBase, dec("100"))
	c := NewCatalog(repo)

	price, err := c.ResolvePrice(1, domain.RoleVIP)
	require.NoError(t, err)
	assert.True(t, price.Equal(dec("100")))
}

func TestResolvePrice_NoPriceOnFile(t *testing.T) {
	repo := newMockCatalogRepo()
	repo.addProduct(domain.Product{ID: 1, Name: "Topup", Type: domain.TypeGameTopup, Enabled: true})
	c := NewCatalog(repo)

	_, err := c.ResolvePrice(1, domain.RoleUser)
	assert.ErrorIs(t, err, domain.ErrPricingNotFound)
}
