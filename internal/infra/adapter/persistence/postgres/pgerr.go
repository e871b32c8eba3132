package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolationCode is the Postgres SQLSTATE for a unique-constraint
// violation (23505).
const uniqueViolationCode = "23505"

// isUniqueViolation reports whether err is a pgx unique-constraint
// violation, regardless of which constraint fired.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolationCode
	}
	return false
}
