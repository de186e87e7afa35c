package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vendas/internal/core/apperror"
	"vendas/internal/core/id"
	"vendas/internal/domain/catalogs/supplier"
	"vendas/internal/infrastructure/storage/postgres"
)

const suppliersTable = "suppliers"

var supplierColumns = []string{
	"id", "name", "document", "email", "phone", "city", "state",
	"created_at", "updated_at",
}

// SupplierRepo implements supplier.Repository.
type SupplierRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewSupplierRepo creates a new supplier repository.
func NewSupplierRepo(txm *postgres.TxManager) *SupplierRepo {
	return &SupplierRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ supplier.Repository = (*SupplierRepo)(nil)

func (r *SupplierRepo) Create(ctx context.Context, s *supplier.Supplier) error {
	q := r.builder.Insert(suppliersTable).
		Columns(supplierColumns...).
		Values(
			s.ID, s.Name, s.Document, s.Email, s.Phone, s.City, s.State,
			s.CreatedAt, s.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert supplier: %w", err))
	}

	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, supplierID id.ID) (*supplier.Supplier, error) {
	return r.getByField(ctx, "id", supplierID)
}

func (r *SupplierRepo) GetByDocument(ctx context.Context, document string) (*supplier.Supplier, error) {
	return r.getByField(ctx, "document", document)
}

func (r *SupplierRepo) getByField(ctx context.Context, field string, value any) (*supplier.Supplier, error) {
	q := r.builder.Select(supplierColumns...).
		From(suppliersTable).
		Where(squirrel.Eq{field: value})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var s supplier.Supplier
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("supplier", value)
		}
		return nil, postgres.MapError(fmt.Errorf("get supplier: %w", err))
	}

	return &s, nil
}

func (r *SupplierRepo) Update(ctx context.Context, s *supplier.Supplier) error {
	q := r.builder.Update(suppliersTable).
		Set("name", s.Name).
		Set("document", s.Document).
		Set("email", s.Email).
		Set("phone", s.Phone).
		Set("city", s.City).
		Set("state", s.State).
		Set("updated_at", s.UpdatedAt).
		Where(squirrel.Eq{"id": s.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update supplier: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("supplier", s.ID)
	}

	return nil
}

func (r *SupplierRepo) Delete(ctx context.Context, supplierID id.ID) error {
	sql := "DELETE FROM " + suppliersTable + " WHERE id = $1"

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, supplierID)
	if err != nil {
		return postgres.MapError(fmt.Errorf("delete supplier: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("supplier", supplierID)
	}

	return nil
}

func (r *SupplierRepo) List(ctx context.Context, filter supplier.ListFilter) ([]supplier.Supplier, error) {
	q := r.builder.Select(supplierColumns...).
		From(suppliersTable).
		OrderBy("name")

	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"name": searchPattern},
			squirrel.ILike{"document": searchPattern},
		})
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

	var suppliers []supplier.Supplier
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &suppliers, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("select suppliers: %w", err))
	}

	return suppliers, nil
}
