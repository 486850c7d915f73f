package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrEmptyConnectionString    = errors.New("pg: PG_CONN_URL is empty")
	ErrFailedToParseDBConfig    = errors.New("pg: cannot parse connection string")
	ErrFailedToOpenDBConnection = errors.New("pg: cannot connect")
	ErrHealthcheckFailed        = errors.New("pg: ping failed")
	ErrFailedToApplyMigrations  = errors.New("pg: migration failed")
	ErrFailedToReadVersion      = errors.New("pg: cannot read schema version")
)

const uniqueViolation = "23505"

// IsNotFoundError reports whether a query returned no rows.
func IsNotFoundError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError reports a unique constraint violation.
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == uniqueViolation
}
