// Package sales_repo provides the PostgreSQL implementation of the
// sales repository.
package sales_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vendas/internal/core/apperror"
	"vendas/internal/core/id"
	"vendas/internal/core/types"
	"vendas/internal/domain/sales"
	"vendas/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "sales"
	saleLinesTable = "sale_lines"
)

var saleColumns = []string{
	"id", "customer_id", "sale_date", "total", "note",
	"created_at", "updated_at",
}

// SaleRepo implements sales.Repository.
type SaleRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewSaleRepo creates a new sales repository.
func NewSaleRepo(txm *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ sales.Repository = (*SaleRepo)(nil)

func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	q := r.builder.Insert(salesTable).
		Columns(saleColumns...).
		Values(
			sale.ID, sale.CustomerID, sale.Date, sale.Total, sale.Note,
			sale.CreatedAt, sale.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert sale: %w", err))
	}

	return nil
}

func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		Where(squirrel.Eq{"id": saleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sale sales.Sale
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &sale, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale", saleID)
		}
		return nil, postgres.MapError(fmt.Errorf("get sale: %w", err))
	}

	return &sale, nil
}

func (r *SaleRepo) GetLines(ctx context.Context, saleID id.ID) ([]sales.Line, error) {
	q := r.builder.Select("id", "sale_id", "product_id", "quantity", "subtotal").
		From(saleLinesTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []sales.Line
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &lines, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("select lines: %w", err))
	}

	return lines, nil
}

func (r *SaleRepo) CreateLine(ctx context.Context, line *sales.Line) error {
	q := r.builder.Insert(saleLinesTable).
		Columns("id", "sale_id", "product_id", "quantity", "subtotal").
		Values(line.ID, line.SaleID, line.ProductID, line.Quantity, line.Subtotal)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert line: %w", err))
	}

	return nil
}

func (r *SaleRepo) UpdateTotal(ctx context.Context, saleID id.ID, total types.Money) error {
	q := r.builder.Update(salesTable).
		Set("total", total).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": saleID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update total: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", saleID)
	}

	return nil
}

// Delete removes the sale; lines cascade via FK.
func (r *SaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	sql := "DELETE FROM " + salesTable + " WHERE id = $1"

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, saleID)
	if err != nil {
		return postgres.MapError(fmt.Errorf("delete sale: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", saleID)
	}

	return nil
}

func (r *SaleRepo) List(ctx context.Context, filter sales.ListFilter) ([]sales.Sale, error) {
	q := r.builder.Select(saleColumns...).
		From(salesTable).
		OrderBy("sale_date DESC", "id DESC")

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"sale_date": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"sale_date": *filter.DateTo})
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

	var result []sales.Sale
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &result, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("select sales: %w", err))
	}

	return result, nil
}

func (r *SaleRepo) TotalForPeriod(ctx context.Context, from, to time.Time) (types.Money, error) {
	sql := `
		SELECT COALESCE(SUM(total), 0)
		FROM sales
		WHERE sale_date >= $1 AND sale_date <= $2
	`

	var total types.Money
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, from, to).Scan(&total); err != nil {
		return types.ZeroMoney(), postgres.MapError(fmt.Errorf("sum totals: %w", err))
	}

	return total, nil
}
