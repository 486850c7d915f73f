package pgstore

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/dmitrymomot/twofactor/pkg/pg"
)

// DefaultContactQuery looks the address up in the application's users table.
const DefaultContactQuery = `SELECT email FROM users WHERE id = $1`

// ErrContactNotFound is returned when the lookup query yields no row.
var ErrContactNotFound = errors.New("pgstore: contact not found")

// ContactDirectory resolves notification addresses with a single-column
// query that takes the user ID as $1. It lets the service share the
// application's database without owning the users table.
type ContactDirectory struct {
	db    DB
	query string
}

// NewContactDirectory creates a ContactDirectory. An empty query selects
// DefaultContactQuery.
func NewContactDirectory(db DB, query string) *ContactDirectory {
	if query == "" {
		query = DefaultContactQuery
	}
	return &ContactDirectory{db: db, query: query}
}

func (d *ContactDirectory) EmailFor(ctx context.Context, userID uuid.UUID) (string, error) {
	var addr string
	if err := d.db.QueryRow(ctx, d.query, userID).Scan(&addr); err != nil {
		if pg.IsNotFoundError(err) {
			return "", ErrContactNotFound
		}
		return "", errors.Join(ErrQueryFailed, err)
	}
	return addr, nil
}
