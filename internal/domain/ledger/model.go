// Package ledger provides the stock ledger: atomic, audited mutation of
// product quantities. Every quantity change is recorded as an immutable
// Movement under the same transaction that persists the new quantity.
package ledger

import (
	"time"

	"vendas/internal/core/apperror"
	"vendas/internal/core/id"
)

// Kind classifies a stock movement.
type Kind string

const (
	// KindInbound increases stock (goods received, sale reversal)
	KindInbound Kind = "inbound"
	// KindOutbound decreases stock (sale)
	KindOutbound Kind = "outbound"
	// KindAdjustment is a manual stock-count correction, either direction
	KindAdjustment Kind = "adjustment"
)

// Movement is one immutable audit record of a quantity change.
// Movements are created by the ledger service, never mutated or deleted.
type Movement struct {
	// ID is a UUIDv7, so ids order chronologically
	ID id.ID `db:"id" json:"id"`

	ProductID id.ID `db:"product_id" json:"productId"`
	Kind      Kind  `db:"kind" json:"kind"`

	// Quantity is the absolute delta, always positive
	Quantity int64 `db:"quantity" json:"quantity"`

	// Before/after snapshot of the product quantity
	QuantityBefore int64 `db:"quantity_before" json:"quantityBefore"`
	QuantityAfter  int64 `db:"quantity_after" json:"quantityAfter"`

	Note string `db:"note" json:"note,omitempty"`

	// UserID is the acting user, when known
	UserID *id.ID `db:"user_id" json:"userId,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovement constructs a Movement and checks its internal consistency.
// Requiring before/after here prevents accidental creation of entries
// that disagree with the quantity they describe.
func NewMovement(productID id.ID, kind Kind, before, after int64, note string, userID *id.ID) (*Movement, error) {
	if id.IsNil(productID) {
		return nil, apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}

	delta := after - before
	if delta < 0 {
		delta = -delta
	}
	if delta == 0 {
		return nil, apperror.NewValidation("movement delta must be positive").
			WithDetail("before", before).
			WithDetail("after", after)
	}

	switch kind {
	case KindInbound:
		if after != before+delta || after < before {
			return nil, apperror.NewValidation("inbound movement must increase quantity")
		}
	case KindOutbound:
		if after != before-delta || after > before {
			return nil, apperror.NewValidation("outbound movement must decrease quantity")
		}
	case KindAdjustment:
		// Either direction is valid for a count correction
	default:
		return nil, apperror.NewValidation("invalid movement kind").
			WithDetail("kind", string(kind))
	}

	if after < 0 || before < 0 {
		return nil, apperror.NewValidation("quantities cannot be negative")
	}

	return &Movement{
		ID:             id.New(),
		ProductID:      productID,
		Kind:           kind,
		Quantity:       delta,
		QuantityBefore: before,
		QuantityAfter:  after,
		Note:           note,
		UserID:         userID,
		CreatedAt:      time.Now().UTC(),
	}, nil
}
