package supplier

import (
	"context"

	"vendas/internal/core/apperror"
	"vendas/internal/core/id"
	"vendas/pkg/logger"
)

// Service provides business operations for the supplier catalog.
type Service struct {
	repo Repository
}

// NewService creates a new supplier service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a new supplier.
func (s *Service) Create(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByDocument(ctx, sup.Document); err == nil && existing.ID != sup.ID {
		return apperror.NewDuplicate("supplier", "document", sup.Document)
	}

	if err := s.repo.Create(ctx, sup); err != nil {
		return err
	}

	logger.Info(ctx, "supplier created", "supplier_id", sup.ID, "name", sup.Name)
	return nil
}

// Update saves supplier attributes.
func (s *Service) Update(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}

	if existing, err := s.repo.GetByDocument(ctx, sup.Document); err == nil && existing.ID != sup.ID {
		return apperror.NewDuplicate("supplier", "document", sup.Document)
	}

	sup.Touch()
	return s.repo.Update(ctx, sup)
}

// GetByID retrieves one supplier.
func (s *Service) GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error) {
	return s.repo.GetByID(ctx, supplierID)
}

// Delete removes a supplier. Refused while products reference them.
func (s *Service) Delete(ctx context.Context, supplierID id.ID) error {
	return s.repo.Delete(ctx, supplierID)
}

// List retrieves suppliers matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Supplier, error) {
	return s.repo.List(ctx, filter)
}
