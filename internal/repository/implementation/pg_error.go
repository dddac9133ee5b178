package implementation

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgUniqueViolation     = "23505"
)

// PgErrorClass names the Postgres failure behind err, or "" when err did not
// come from the server.
func PgErrorClass(err error) string {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return ""
	}
	switch pgErr.Code {
	case pgForeignKeyViolation:
		return "foreign_key_violation"
	case pgNotNullViolation:
		return "not_null_violation"
	case pgUniqueViolation:
		return "unique_violation"
	default:
		return "sqlstate_" + pgErr.Code
	}
}

func wrapWriteError(op string, err error) error {
	if class := PgErrorClass(err); class != "" {
		return fmt.Errorf("%s: %s: %w", op, class, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
