package storage

import (
	"errors"

	"storefront_system/internal/domain"

	"gorm.io/gorm"
)

// CatalogRepository is the GORM-backed catalog.Repository.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) ProductByID(id uint) (*domain.Product, error) {
	var p domain.Product
	if err := r.db.First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *CatalogRepository) PriceRow(productID uint, tier string) (*domain.ProductPrice, error) {
	var row domain.ProductPrice
	err := r.db.Where("product_id = ? AND tier = ?", productID, tier).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrPricingNotFound
		}
		return nil, err
	}
	return &row, nil
}
