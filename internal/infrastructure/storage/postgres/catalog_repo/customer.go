package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"vendas/internal/core/apperror"
	"vendas/internal/core/id"
	"vendas/internal/domain/catalogs/customer"
	"vendas/internal/infrastructure/storage/postgres"
)

const customersTable = "customers"

var customerColumns = []string{
	"id", "name", "document", "email", "phone", "city", "state",
	"created_at", "updated_at",
}

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	txm     *postgres.TxManager
	builder squirrel.StatementBuilderType
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo(txm *postgres.TxManager) *CustomerRepo {
	return &CustomerRepo{
		txm:     txm,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ customer.Repository = (*CustomerRepo)(nil)

func (r *CustomerRepo) Create(ctx context.Context, c *customer.Customer) error {
	q := r.builder.Insert(customersTable).
		Columns(customerColumns...).
		Values(
			c.ID, c.Name, c.Document, c.Email, c.Phone, c.City, c.State,
			c.CreatedAt, c.UpdatedAt,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert customer: %w", err))
	}

	return nil
}

func (r *CustomerRepo) GetByID(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	return r.getByField(ctx, "id", customerID)
}

func (r *CustomerRepo) GetByDocument(ctx context.Context, document string) (*customer.Customer, error) {
	return r.getByField(ctx, "document", document)
}

func (r *CustomerRepo) getByField(ctx context.Context, field string, value any) (*customer.Customer, error) {
	q := r.builder.Select(customerColumns...).
		From(customersTable).
		Where(squirrel.Eq{field: value})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c customer.Customer
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("customer", value)
		}
		return nil, postgres.MapError(fmt.Errorf("get customer: %w", err))
	}

	return &c, nil
}

func (r *CustomerRepo) Update(ctx context.Context, c *customer.Customer) error {
	q := r.builder.Update(customersTable).
		Set("name", c.Name).
		Set("document", c.Document).
		Set("email", c.Email).
		Set("phone", c.Phone).
		Set("city", c.City).
		Set("state", c.State).
		Set("updated_at", c.UpdatedAt).
		Where(squirrel.Eq{"id": c.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update customer: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", c.ID)
	}

	return nil
}

func (r *CustomerRepo) Delete(ctx context.Context, customerID id.ID) error {
	sql := "DELETE FROM " + customersTable + " WHERE id = $1"

	querier := r.txm.GetQuerier(ctx)
	tag, err := querier.Exec(ctx, sql, customerID)
	if err != nil {
		return postgres.MapError(fmt.Errorf("delete customer: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("customer", customerID)
	}

	return nil
}

func (r *CustomerRepo) List(ctx context.Context, filter customer.ListFilter) ([]customer.Customer, error) {
	q := r.builder.Select(customerColumns...).
		From(customersTable).
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

	var customers []customer.Customer
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &customers, sql, args...); err != nil {
		return nil, postgres.MapError(fmt.Errorf("select customers: %w", err))
	}

	return customers, nil
}
