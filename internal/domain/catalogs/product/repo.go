package product

import (
	"context"

	"vendas/internal/core/id"
	"vendas/internal/core/types"
)

// Repository defines operations for the product catalog.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, productID id.ID) (*Product, error)

	// Update writes description, price, min quantity and supplier.
	// It never touches quantity; only the stock ledger mutates that.
	Update(ctx context.Context, p *Product) error

	// Delete fails with REFERENTIAL_INTEGRITY while the product is
	// referenced by sale lines or movements.
	Delete(ctx context.Context, productID id.ID) error

	List(ctx context.Context, filter ListFilter) ([]Product, error)

	// ListLowStock returns products with quantity at or below their
	// reorder threshold, lowest stock first.
	ListLowStock(ctx context.Context) ([]Product, error)

	// GetPrice reads the current price (sales.PriceReader).
	GetPrice(ctx context.Context, productID id.ID) (types.Money, error)
}

// ListFilter narrows product listings.
type ListFilter struct {
	Search     string
	SupplierID *id.ID
	Limit      int
	Offset     int
}
