package ledger

import (
	"context"
	"fmt"

	"vendas/internal/core/apperror"
	"vendas/internal/core/id"
	"vendas/internal/core/tx"
	"vendas/pkg/logger"
)

// Service exposes the atomic stock operations. Each operation runs as
// one unit of work: the quantity update and its movement record commit
// or roll back together. The quantity is always re-read under lock,
// never trusted from a previously loaded copy.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new stock ledger service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Increase adds amount units of stock to the product and records an
// inbound movement.
func (s *Service) Increase(ctx context.Context, productID id.ID, amount int64, note string, userID *id.ID) (*Movement, error) {
	if amount <= 0 {
		return nil, apperror.NewValidation("amount must be positive").
			WithDetail("amount", amount)
	}

	var movement *Movement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetQuantityForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		m, err := s.apply(ctx, productID, KindInbound, current, current+amount, note, userID)
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock increased",
		"product_id", productID,
		"amount", amount,
		"quantity", movement.QuantityAfter,
	)
	return movement, nil
}

// Decrease removes amount units of stock from the product and records an
// outbound movement. Returns INSUFFICIENT_STOCK, with no mutation and no
// movement record, when the available quantity does not cover the request.
// The check and the write happen under the same row lock; that is what
// closes the oversell race between concurrent decreases.
func (s *Service) Decrease(ctx context.Context, productID id.ID, amount int64, note string, userID *id.ID) (*Movement, error) {
	if amount <= 0 {
		return nil, apperror.NewValidation("amount must be positive").
			WithDetail("amount", amount)
	}

	var movement *Movement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetQuantityForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		if current < amount {
			return apperror.NewInsufficientStock(productID.String(), current, amount)
		}

		m, err := s.apply(ctx, productID, KindOutbound, current, current-amount, note, userID)
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "stock decreased",
		"product_id", productID,
		"amount", amount,
		"quantity", movement.QuantityAfter,
	)
	return movement, nil
}

// AdjustTo sets the product quantity to an exact non-negative value and
// records an adjustment movement with the absolute delta. Used for manual
// stock-count corrections; it deliberately skips the insufficient-stock
// check, since a count may legitimately set any non-negative value.
// A justification note is mandatory. Adjusting to the current quantity
// is a no-op and records nothing.
func (s *Service) AdjustTo(ctx context.Context, productID id.ID, newQuantity int64, note string, userID *id.ID) (*Movement, error) {
	if newQuantity < 0 {
		return nil, apperror.NewValidation("quantity cannot be negative").
			WithDetail("quantity", newQuantity)
	}
	if note == "" {
		return nil, apperror.NewValidation("adjustment requires a justification note").
			WithDetail("field", "note")
	}

	var movement *Movement
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetQuantityForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		if current == newQuantity {
			return nil
		}

		m, err := s.apply(ctx, productID, KindAdjustment, current, newQuantity, note, userID)
		if err != nil {
			return err
		}
		movement = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	if movement == nil {
		logger.Debug(ctx, "stock adjustment is a no-op", "product_id", productID)
		return nil, nil
	}

	logger.Info(ctx, "stock adjusted",
		"product_id", productID,
		"before", movement.QuantityBefore,
		"after", movement.QuantityAfter,
	)
	return movement, nil
}

// apply persists the new quantity and its movement record. Must run
// inside the transaction that holds the product row lock.
func (s *Service) apply(ctx context.Context, productID id.ID, kind Kind, before, after int64, note string, userID *id.ID) (*Movement, error) {
	m, err := NewMovement(productID, kind, before, after, note, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetQuantity(ctx, productID, after); err != nil {
		return nil, fmt.Errorf("set quantity: %w", err)
	}
	if err := s.repo.CreateMovement(ctx, m); err != nil {
		return nil, fmt.Errorf("create movement: %w", err)
	}
	return m, nil
}

// History returns movement records for a product, newest-first unless
// the filter requests replay order.
func (s *Service) History(ctx context.Context, productID id.ID, filter MovementFilter) ([]Movement, error) {
	if id.IsNil(productID) {
		return nil, apperror.NewValidation("product is required")
	}
	return s.repo.ListMovements(ctx, productID, filter)
}
