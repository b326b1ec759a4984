package catalog

import (
	"storefront_system/internal/domain"

	"github.com/shopspring/decimal"
)

// Repository is the read-only persistence contract of the catalog.
type Repository interface {
	ProductByID(id uint) (*domain.Product, error)
	PriceRow(productID uint, tier string) (*domain.ProductPrice, error)
}

// Catalog resolves products and their authoritative tiered prices. It is
// read-only to the order saga; price maintenance happens on the admin
// surface.
type Catalog struct {
	repo Repository
}

func NewCatalog(repo Repository) *Catalog {
	return &Catalog{repo: repo}
}

// Product returns the product record; disabled products are reported as
// not found so the saga refuses to sell them.
func (c *Catalog) Product(id uint) (*domain.Product, error) {
	p, err := c.repo.ProductByID(id)
	if err != nil {
		return nil, err
	}
	if !p.Enabled {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

// ResolvePrice returns the authoritative unit price for the product given
// the caller's role. Roles map to tiers (vip -> vip, agent -> agent,
// everyone else -> base); a missing tier row falls back to the base row.
func (c *Catalog) ResolvePrice(productID uint, role string) (decimal.Decimal, error) {
	tier := tierForRole(role)
	row, err := c.repo.PriceRow(productID, tier)
	if err == domain.ErrPricingNotFound && tier != domain.TierBase {
		row, err = c.repo.PriceRow(productID, domain.TierBase)
	}
	if err != nil {
		return decimal.Zero, err
	}
	return row.UnitPrice, nil
}

func tierForRole(role string) string {
	switch role {
	case domain.RoleVIP:
		return domain.TierVIP
	case domain.RoleAgent:
		return domain.TierAgent
	default:
		return domain.TierBase
	}
}
