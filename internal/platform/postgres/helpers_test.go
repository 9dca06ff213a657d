package postgres

import "github.com/jackc/pgx/v5/pgconn"

var pgErrFK = pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "tasks_created_by_fkey"}

func newUniqueViolation() error {
	return &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "users_email_key"}
}
