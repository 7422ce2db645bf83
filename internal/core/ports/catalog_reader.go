package ports

import (
	"context"

	"kayayo/internal/core/domain/model/kernel"
)

// Product is the catalog's view of an item at checkout time.
type Product struct {
	ID        kernel.UUID
	SellerID  kernel.UUID
	Name      string
	UnitPrice kernel.Money
}

// CatalogReader resolves products to their seller and price.
type CatalogReader interface {
	// GetProducts returns the products found among ids, keyed by id. Missing
	// ids are simply absent.
	GetProducts(ctx context.Context, ids []kernel.UUID) (map[kernel.UUID]Product, error)
}
