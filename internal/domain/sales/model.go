// Package sales provides the sale commit engine: multi-line sales are
// committed as all-or-nothing transactions that never oversell stock,
// and reversed by restoring exactly the stock each line consumed.
package sales

import (
	"context"
	"time"

	"vendas/internal/core/apperror"
	"vendas/internal/core/entity"
	"vendas/internal/core/id"
	"vendas/internal/core/types"
)

// Sale is one committed sale.
// Total always equals the sum of its line subtotals after commit.
type Sale struct {
	entity.Base

	CustomerID id.ID       `db:"customer_id" json:"customerId"`
	Date       time.Time   `db:"sale_date" json:"date"`
	Total      types.Money `db:"total" json:"total"`
	Note       string      `db:"note" json:"note,omitempty"`

	// Lines are owned by the sale (cascade delete)
	Lines []Line `db:"-" json:"lines"`
}

// Line is one product/quantity entry within a sale. Subtotal is frozen
// at the price in effect when the line was committed, not the live
// product price.
type Line struct {
	ID        id.ID       `db:"id" json:"id"`
	SaleID    id.ID       `db:"sale_id" json:"saleId"`
	ProductID id.ID       `db:"product_id" json:"productId"`
	Quantity  int64       `db:"quantity" json:"quantity"`
	Subtotal  types.Money `db:"subtotal" json:"subtotal"`
}

// NewSale creates a sale with zero total and no lines.
func NewSale(customerID id.ID, date time.Time, note string) *Sale {
	return &Sale{
		Base:       entity.NewBase(),
		CustomerID: customerID,
		Date:       date,
		Total:      types.ZeroMoney(),
		Note:       note,
		Lines:      make([]Line, 0),
	}
}

// LineInput is one requested (product, quantity) pair for a commit.
type LineInput struct {
	ProductID id.ID
	Quantity  int64
}

// CommitInput is the full input for committing a sale.
type CommitInput struct {
	CustomerID id.ID
	Date       time.Time
	Note       string
	Lines      []LineInput
}

// Validate implements entity.Validatable.
func (in CommitInput) Validate(ctx context.Context) error {
	if id.IsNil(in.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if len(in.Lines) == 0 {
		return apperror.NewValidation("a sale requires at least one line").
			WithDetail("field", "lines")
	}

	for i, line := range in.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if line.Quantity <= 0 {
			return apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}
