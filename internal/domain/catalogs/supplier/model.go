// Package supplier provides the supplier catalog.
package supplier

import (
	"context"

	"vendas/internal/core/apperror"
	"vendas/internal/core/entity"
)

// Supplier is a goods provider on record.
type Supplier struct {
	entity.Base

	Name string `db:"name" json:"name"`

	// Document is the company registration (CNPJ), unique
	Document string `db:"document" json:"document"`

	Email string `db:"email" json:"email,omitempty"`
	Phone string `db:"phone" json:"phone,omitempty"`
	City  string `db:"city" json:"city,omitempty"`
	State string `db:"state" json:"state,omitempty"`
}

// NewSupplier creates a supplier with required fields.
func NewSupplier(name, document string) *Supplier {
	return &Supplier{
		Base:     entity.NewBase(),
		Name:     name,
		Document: document,
	}
}

// Validate implements entity.Validatable.
func (s *Supplier) Validate(ctx context.Context) error {
	if s.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if s.Document == "" {
		return apperror.NewValidation("document is required").
			WithDetail("field", "document")
	}
	if s.State != "" && len(s.State) != 2 {
		return apperror.NewValidation("state must be a two-letter code").
			WithDetail("field", "state")
	}
	return nil
}
