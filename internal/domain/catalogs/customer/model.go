// Package customer provides the customer catalog.
package customer

import (
	"context"

	"vendas/internal/core/apperror"
	"vendas/internal/core/entity"
)

// Customer is a buyer on record.
type Customer struct {
	entity.Base

	Name string `db:"name" json:"name"`

	// Document is the national id (CPF), unique
	Document string `db:"document" json:"document"`

	Email string `db:"email" json:"email,omitempty"`
	Phone string `db:"phone" json:"phone,omitempty"`
	City  string `db:"city" json:"city,omitempty"`
	State string `db:"state" json:"state,omitempty"`
}

// NewCustomer creates a customer with required fields.
func NewCustomer(name, document string) *Customer {
	return &Customer{
		Base:     entity.NewBase(),
		Name:     name,
		Document: document,
	}
}

// Validate implements entity.Validatable.
func (c *Customer) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("name is required").
			WithDetail("field", "name")
	}
	if c.Document == "" {
		return apperror.NewValidation("document is required").
			WithDetail("field", "document")
	}
	if c.State != "" && len(c.State) != 2 {
		return apperror.NewValidation("state must be a two-letter code").
			WithDetail("field", "state")
	}
	return nil
}
