package ledger

import (
	"context"
	"time"

	"vendas/internal/core/id"
)

// Repository defines the storage operations the ledger needs.
type Repository interface {
	// GetQuantityForUpdate reads the current product quantity with a
	// row-level exclusive lock, serializing concurrent writers on the
	// same product until the enclosing transaction ends.
	// Returns NOT_FOUND if the product does not exist.
	GetQuantityForUpdate(ctx context.Context, productID id.ID) (int64, error)

	// SetQuantity persists a new quantity for the product.
	// Must be called under the lock taken by GetQuantityForUpdate.
	SetQuantity(ctx context.Context, productID id.ID, quantity int64) error

	// CreateMovement appends one movement record.
	CreateMovement(ctx context.Context, m *Movement) error

	// ListMovements returns movement history for a product.
	ListMovements(ctx context.Context, productID id.ID, filter MovementFilter) ([]Movement, error)
}

// MovementFilter narrows movement history queries.
type MovementFilter struct {
	Kind     *Kind
	FromDate *time.Time
	ToDate   *time.Time

	// Ascending orders oldest-first (replay order); default is
	// newest-first for display.
	Ascending bool

	Limit  int
	Offset int
}
