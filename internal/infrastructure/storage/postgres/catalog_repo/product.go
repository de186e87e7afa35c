// Package catalog_repo provides PostgreSQL implementations for the
// catalog repositories.
package catalog_repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"vendas/internal/core/apperror"
	"vendas/internal/core/id"
	"vendas/internal/core/types"
	"vendas/internal/domain/catalogs/product"
	"vendas/internal/infrastructure/storage/postgres"
)

const productsTable = "products"

var productColumns = []string{
	"id", "description", "price", "quantity", "min_quantity",
	"supplier_id", "created_at", "updated_at",
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ product.Repository = (*ProductRepo)(nil)

// Create inserts a product with its initial quantity.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder.Insert(productsTable).
		Columns(productColumns...).
		Values(
			p.ID, p.Description, p.Price, p.Quantity, p.MinQuantity,
			p.SupplierID, p.CreatedAt, p.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert product: %w", err))
	}

	return nil
}

// GetByID retrieves one product.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p product.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("product", productID)
		}
		return nil, postgres.MapError(fmt.Errorf("get product: %w", err))
	}

	return &p, nil
}

// Update writes catalog attributes. Quantity is deliberately excluded;
// only the stock ledger mutates it.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	q := r.builder.Update(productsTable).
		Set("description", p.Description).
		Set("price", p.Price).
		Set("min_quantity", p.MinQuantity).
		Set("supplier_id", p.SupplierID).
		Set("updated_at", p.UpdatedAt).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update product: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID)
	}

	return nil
}

// Delete removes a product. FK restrictions on sale_lines and
// stock_movements surface as REFERENTIAL_INTEGRITY.
func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	sql := "DELETE FROM " + productsTable + " WHERE id = $1"

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, productID)
	if err != nil {
		return postgres.MapError(fmt.Errorf("delete product: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID)
	}

	return nil
}

// List retrieves products matching the filter.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		OrderBy("description")

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"description": "%" + filter.Search + "%"})
	}
	if filter.SupplierID != nil {
		q = q.Where(squirrel.Eq{"supplier_id": *filter.SupplierID})
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

	var products []product.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("select products: %w", err))
	}

	return products, nil
}

// ListLowStock returns products at or below their reorder threshold,
// lowest stock first.
func (r *ProductRepo) ListLowStock(ctx context.Context) ([]product.Product, error) {
	q := r.builder.Select(productColumns...).
		From(productsTable).
		Where(squirrel.Expr("quantity <= min_quantity")).
		OrderBy("quantity", "description")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []product.Product
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &products, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("select low stock: %w", err))
	}

	return products, nil
}

// GetPrice reads the current price. Inside a transaction the read is
// consistent with any stock lock taken in the same unit of work.
func (r *ProductRepo) GetPrice(ctx context.Context, productID id.ID) (types.Money, error) {
	sql := "SELECT price FROM " + productsTable + " WHERE id = $1"

	var price types.Money
	querier := r.txm.GetQuerier(ctx)
	if err := querier.QueryRow(ctx, sql, productID).Scan(&price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return types.ZeroMoney(), apperror.NewNotFound("product", productID)
		}
		return types.ZeroMoney(), postgres.MapError(fmt.Errorf("get price: %w", err))
	}

	return price, nil
}
