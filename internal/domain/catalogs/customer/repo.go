package customer

import (
	"context"

	"vendas/internal/core/id"
)

// Repository defines operations for the customer catalog.
type Repository interface {
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, customerID id.ID) (*Customer, error)
	GetByDocument(ctx context.Context, document string) (*Customer, error)
	Update(ctx context.Context, c *Customer) error

	// Delete fails with REFERENTIAL_INTEGRITY while sales reference
	// the customer.
	Delete(ctx context.Context, customerID id.ID) error

	List(ctx context.Context, filter ListFilter) ([]Customer, error)
}

// ListFilter narrows customer listings.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}
