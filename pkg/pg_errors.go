package pkg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a unique violation of one of the
// given constraints, or of any constraint when none are given.
func IsUniqueViolation(err error, constraints ...string) bool {
	return isViolation(err, pgUniqueViolation, constraints)
}

// IsForeignKeyViolation is IsUniqueViolation for foreign keys.
func IsForeignKeyViolation(err error, constraints ...string) bool {
	return isViolation(err, pgForeignKeyViolation, constraints)
}

func isViolation(err error, code string, constraints []string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != code {
		return false
	}
	if len(constraints) == 0 {
		return true
	}
	for _, c := range constraints {
		if pgErr.ConstraintName == c {
			return true
		}
	}
	return false
}
