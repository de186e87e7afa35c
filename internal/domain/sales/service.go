package sales

import (
	"context"
	"fmt"
	"time"

	"vendas/internal/core/id"
	"vendas/internal/core/tx"
	"vendas/internal/core/types"
	"vendas/internal/domain/ledger"
	"vendas/pkg/logger"
)

// Service orchestrates sale commits and reversals on top of the stock
// ledger. All multi-row work happens inside one transaction: the ledger
// calls below reuse the transaction opened here, so any failure rolls
// back the sale, its lines, every stock decrease and every movement.
type Service struct {
	repo      Repository
	prices    PriceReader
	ledger    *ledger.Service
	txManager tx.Manager
}

// NewService creates a new sales service.
func NewService(repo Repository, prices PriceReader, stockLedger *ledger.Service, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		prices:    prices,
		ledger:    stockLedger,
		txManager: txManager,
	}
}

// Commit creates a sale with its lines, decrementing stock line by line.
// Stock is checked per line under the ledger's row lock, not against an
// up-front snapshot: two lines may reference the same product, and the
// second must see the quantity left by the first.
//
// Returns the new sale id, or a typed error after full rollback; the
// store never reflects a partially applied sale. A SERIALIZATION_FAILURE
// error means the whole Commit may be retried.
func (s *Service) Commit(ctx context.Context, input CommitInput) (id.ID, error) {
	if err := input.Validate(ctx); err != nil {
		return id.Nil(), err
	}

	sale := NewSale(input.CustomerID, input.Date, input.Note)

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, sale); err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		note := fmt.Sprintf("sale #%s", sale.ID)
		total := types.ZeroMoney()

		for _, in := range input.Lines {
			// Price read inside the transaction, consistent with the
			// stock check that follows.
			price, err := s.prices.GetPrice(ctx, in.ProductID)
			if err != nil {
				return err
			}

			if _, err := s.ledger.Decrease(ctx, in.ProductID, in.Quantity, note, nil); err != nil {
				return err
			}

			line := Line{
				ID:        id.New(),
				SaleID:    sale.ID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
				Subtotal:  price.Mul(types.MoneyFromInt(in.Quantity)),
			}
			if err := s.repo.CreateLine(ctx, &line); err != nil {
				return fmt.Errorf("create line: %w", err)
			}

			sale.Lines = append(sale.Lines, line)
			total = total.Add(line.Subtotal)
		}

		sale.Total = total
		if err := s.repo.UpdateTotal(ctx, sale.ID, total); err != nil {
			return fmt.Errorf("update total: %w", err)
		}
		return nil
	})
	if err != nil {
		return id.Nil(), err
	}

	logger.Info(ctx, "sale committed",
		"sale_id", sale.ID,
		"customer_id", sale.CustomerID,
		"lines", len(sale.Lines),
		"total", sale.Total,
	)
	return sale.ID, nil
}

// Reverse deletes a committed sale and restores the stock it consumed,
// line by line, inside one transaction. This is the only path besides
// manual adjustment that returns stock to inventory.
//
// Stock restoration is not re-validated against quantity bounds: an
// Increase has no business precondition, and restoring sold units cannot
// realistically overflow an int64 quantity.
func (s *Service) Reverse(ctx context.Context, saleID id.ID) error {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return err
	}

	lines, err := s.repo.GetLines(ctx, saleID)
	if err != nil {
		return fmt.Errorf("get lines: %w", err)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		note := fmt.Sprintf("reversal of sale #%s", sale.ID)

		// Per line, not aggregated: the movement trail must mirror the
		// decreases the commit recorded.
		for _, line := range lines {
			if _, err := s.ledger.Increase(ctx, line.ProductID, line.Quantity, note, nil); err != nil {
				return err
			}
		}

		if err := s.repo.Delete(ctx, sale.ID); err != nil {
			return fmt.Errorf("delete sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale reversed",
		"sale_id", sale.ID,
		"lines", len(lines),
	)
	return nil
}

// GetByID retrieves a sale with its lines.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	sale.Lines = lines

	return sale, nil
}

// List retrieves sales matching the filter, newest-first.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Sale, error) {
	return s.repo.List(ctx, filter)
}

// TotalForPeriod sums sale totals for the period [from, to].
func (s *Service) TotalForPeriod(ctx context.Context, from, to time.Time) (types.Money, error) {
	return s.repo.TotalForPeriod(ctx, from, to)
}
