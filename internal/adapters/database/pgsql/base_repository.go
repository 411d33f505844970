// Package pgsql implements the repository ports against PostgreSQL using pgx.
package pgsql

import (
	"errors"

	"github.com/ajudi46/expense-tracker-server/internal/apperrors"
	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

// mapWriteError translates driver-level errors into application sentinels.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return apperrors.ErrDuplicate
	}
	return err
}
