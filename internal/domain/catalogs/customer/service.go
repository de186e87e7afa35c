package customer

import (
	"context"

	"vendas/internal/core/apperror"
	"vendas/internal/core/id"
	"vendas/pkg/logger"
)

// Service provides business operations for the customer catalog.
type Service struct {
	repo Repository
}

// NewService creates a new customer service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new customer.
func (s *Service) Create(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByDocument(ctx, c.Document); err == nil && existing.ID != c.ID {
		return apperror.NewDuplicate("customer", "document", c.Document)
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}

	logger.Info(ctx, "customer created", "customer_id", c.ID, "name", c.Name)
	return nil
}

// Update saves customer attributes.
func (s *Service) Update(ctx context.Context, c *Customer) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByDocument(ctx, c.Document); err == nil && existing.ID != c.ID {
		return apperror.NewDuplicate("customer", "document", c.Document)
	}

	c.Touch()
	return s.repo.Update(ctx, c)
}

// GetByID retrieves one customer.
func (s *Service) GetByID(ctx context.Context, customerID id.ID) (*Customer, error) {
	return s.repo.GetByID(ctx, customerID)
}

// Delete removes a customer. Refused while sales reference them.
func (s *Service) Delete(ctx context.Context, customerID id.ID) error {
	return s.repo.Delete(ctx, customerID)
}

// List retrieves customers matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Customer, error) {
	return s.repo.List(ctx, filter)
}
