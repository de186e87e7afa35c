// Package product provides the product catalog.
package product

import (
	"context"

	"vendas/internal/core/apperror"
	"vendas/internal/core/entity"
	"vendas/internal/core/id"
	"vendas/internal/core/types"
)

// DefaultMinQuantity is the reorder threshold applied when none is given.
const DefaultMinQuantity int64 = 10

// Product is a catalog item with current stock state.
// Quantity is mutated only through ledger operations; catalog updates
// never write it.
type Product struct {
	entity.Base

	Description string      `db:"description" json:"description"`
	Price       types.Money `db:"price" json:"price"`
	Quantity    int64       `db:"quantity" json:"quantity"`
	MinQuantity int64       `db:"min_quantity" json:"minQuantity"`
	SupplierID  id.ID       `db:"supplier_id" json:"supplierId"`
}

// NewProduct creates a product with the default reorder threshold.
func NewProduct(description string, price types.Money, initialQuantity int64, supplierID id.ID) *Product {
	return &Product{
		Base:        entity.NewBase(),
		Description: description,
		Price:       price,
		Quantity:    initialQuantity,
		MinQuantity: DefaultMinQuantity,
		SupplierID:  supplierID,
	}
}

// LowStock reports whether quantity is at or below the reorder threshold.
func (p *Product) LowStock() bool {
	return p.Quantity <= p.MinQuantity
}

// StockValue returns price multiplied by current quantity.
func (p *Product) StockValue() types.Money {
	return p.Price.Mul(types.MoneyFromInt(p.Quantity))
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if p.Description == "" {
		return apperror.NewValidation("description is required").
			WithDetail("field", "description")
	}
	if p.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}
	if p.Quantity < 0 {
		return apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantity")
	}
	if p.MinQuantity < 1 {
		return apperror.NewValidation("minimum quantity must be at least 1").
			WithDetail("field", "minQuantity")
	}
	if id.IsNil(p.SupplierID) {
		return apperror.NewValidation("supplier is required").
			WithDetail("field", "supplierId")
	}
	return nil
}
