package sales

import (
	"context"
	"time"

	"vendas/internal/core/id"
	"vendas/internal/core/types"
)

// Repository defines persistence operations for sales.
type Repository interface {
	Create(ctx context.Context, sale *Sale) error
	GetByID(ctx context.Context, saleID id.ID) (*Sale, error)
	GetLines(ctx context.Context, saleID id.ID) ([]Line, error)
	CreateLine(ctx context.Context, line *Line) error
	UpdateTotal(ctx context.Context, saleID id.ID, total types.Money) error

	// Delete removes the sale; lines cascade at the storage layer.
	Delete(ctx context.Context, saleID id.ID) error

	List(ctx context.Context, filter ListFilter) ([]Sale, error)

	// TotalForPeriod sums committed sale totals in [from, to].
	TotalForPeriod(ctx context.Context, from, to time.Time) (types.Money, error)
}

// PriceReader reads the current product price. Implemented by the
// product catalog repository; reads participate in the caller's
// transaction so the price is consistent with the stock check.
type PriceReader interface {
	GetPrice(ctx context.Context, productID id.ID) (types.Money, error)
}

// ListFilter narrows sale listings.
type ListFilter struct {
	CustomerID *id.ID
	DateFrom   *time.Time
	DateTo     *time.Time
	Limit      int
	Offset     int
}
