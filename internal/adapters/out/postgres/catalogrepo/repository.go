// Package catalogrepo reads the products table owned by the catalog service.
package catalogrepo

import (
	"context"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/ports"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductDTO struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SellerID  uuid.UUID       `gorm:"type:uuid"`
	Name      string          `gorm:"not null"`
	UnitPrice decimal.Decimal `gorm:"type:numeric(12,2)"`
}

func (ProductDTO) TableName() string {
	return "products"
}

// GormCatalogReader implements ports.CatalogReader using GORM.
type GormCatalogReader struct {
	db *gorm.DB
}

func NewGormCatalogReader(db *gorm.DB) *GormCatalogReader {
	return &GormCatalogReader{db: db}
}

func (r *GormCatalogReader) GetProducts(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]ports.Product, error) {
	products := make(map[kernel.UUID]ports.Product, len(ids))
	if len(ids) == 0 {
		return products, nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}

	var dtos []ProductDTO
	if err := r.db.WithContext(ctx).Where("id IN ?", raw).Find(&dtos).Error; err != nil {
		return nil, err
	}

	for _, dto := range dtos {
		product, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		products[product.ID] = product
	}
	return products, nil
}

func toDomain(dto ProductDTO) (ports.Product, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.Product{}, err
	}
	sellerID, err := kernel.UUIDFromBytes(dto.SellerID[:])
	if err != nil {
		return ports.Product{}, err
	}
	price, err := kernel.NewMoney(dto.UnitPrice)
	if err != nil {
		return ports.Product{}, err
	}
	return ports.Product{ID: id, SellerID: sellerID, Name: dto.Name, UnitPrice: price}, nil
}
