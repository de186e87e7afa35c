// Package ledger_repo provides the PostgreSQL implementation of the
// stock ledger repository.
package ledger_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"vendas/internal/core/apperror"
	"vendas/internal/core/id"
	"vendas/internal/domain/ledger"
	"vendas/internal/infrastructure/storage/postgres"
)

const (
	productsTable       = "products"
	stockMovementsTable = "stock_movements"
)

// StockRepo implements ledger.Repository.
type StockRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock ledger repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ ledger.Repository = (*StockRepo)(nil)

// GetQuantityForUpdate reads the product quantity with a row lock.
// FOR UPDATE holds until the enclosing transaction commits or rolls
// back, so concurrent writers on the same product are serialized.
func (r *StockRepo) GetQuantityForUpdate(ctx context.Context, productID id.ID) (int64, error) {
	sql := `
		SELECT quantity
		FROM products
		WHERE id = $1
		FOR UPDATE
	`

	var quantity int64
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, productID).Scan(&quantity); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperror.NewNotFound("product", productID)
		}
		return 0, postgres.MapError(fmt.Errorf("lock product quantity: %w", err))
	}

	return quantity, nil
}

// SetQuantity persists the new quantity for a product.
func (r *StockRepo) SetQuantity(ctx context.Context, productID id.ID, quantity int64) error {
	q := r.builder.Update(productsTable).
		Set("quantity", quantity).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update quantity: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID)
	}

	return nil
}

// CreateMovement appends one movement record.
func (r *StockRepo) CreateMovement(ctx context.Context, m *ledger.Movement) error {
	q := r.builder.Insert(stockMovementsTable).
		Columns(
			"id", "product_id", "kind", "quantity",
			"quantity_before", "quantity_after",
			"note", "user_id", "created_at",
		).
		Values(
			m.ID, m.ProductID, m.Kind, m.Quantity,
			m.QuantityBefore, m.QuantityAfter,
			m.Note, m.UserID, m.CreatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert movement: %w", err))
	}

	return nil
}

// ListMovements returns movement history for a product.
func (r *StockRepo) ListMovements(ctx context.Context, productID id.ID, filter ledger.MovementFilter) ([]ledger.Movement, error) {
	q := r.builder.Select(
		"id", "product_id", "kind", "quantity",
		"quantity_before", "quantity_after",
		"note", "user_id", "created_at",
	).From(stockMovementsTable).
		Where(squirrel.Eq{"product_id": productID})

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.ToDate})
	}

	if filter.Ascending {
		q = q.OrderBy("created_at ASC", "id ASC")
	} else {
		q = q.OrderBy("created_at DESC", "id DESC")
	}

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []ledger.Movement
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("select movements: %w", err))
	}

	return movements, nil
}
