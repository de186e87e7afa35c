package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"vendas/internal/core/apperror"
)

// PostgreSQL error codes relevant to this core.
const (
	pgCodeForeignKeyViolation = "23503"
	pgCodeUniqueViolation     = "23505"
	pgCodeSerializationFail   = "40001"
	pgCodeDeadlockDetected    = "40P01"
	pgCodeLockNotAvailable    = "55P03"
)

// MapError translates low-level pgx errors into the application taxonomy.
// AppError values pass through untouched so business errors produced
// inside a transaction keep their code after rollback.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := apperror.AsAppError(err); ok {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgCodeForeignKeyViolation:
			return apperror.NewReferentialIntegrity(pgErr.TableName, pgErr.ConstraintName).WithCause(err)
		case pgCodeUniqueViolation:
			return apperror.NewConflict("record violates a uniqueness constraint").
				WithDetail("constraint", pgErr.ConstraintName).
				WithCause(err)
		case pgCodeSerializationFail, pgCodeDeadlockDetected, pgCodeLockNotAvailable:
			// Deadlocks happen when two sales lock the same products in
			// opposite line order; the caller retries the whole Commit.
			return apperror.NewSerialization(err)
		}
	}

	return err
}
