package supplier

import (
	"context"

	"vendas/internal/core/id"
)

// Repository defines operations for the supplier catalog.
type Repository interface {
	Create(ctx context.Context, s *Supplier) error
	GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error)
	GetByDocument(ctx context.Context, document string) (*Supplier, error)
	Update(ctx context.Context, s *Supplier) error

	// Delete fails with REFERENTIAL_INTEGRITY while products reference
	// the supplier.
	Delete(ctx context.Context, supplierID id.ID) error

	List(ctx context.Context, filter ListFilter) ([]Supplier, error)
}

// ListFilter narrows supplier listings.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}
