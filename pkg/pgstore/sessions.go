package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/twofactor/pkg/pg"
	"github.com/dmitrymomot/twofactor/pkg/trustedsession"
)

// SessionStore implements trustedsession.Store.
type SessionStore struct {
	db DB
}

// NewSessionStore creates a SessionStore on db.
func NewSessionStore(db DB) *SessionStore {
	return &SessionStore{db: db}
}

var _ trustedsession.Store = (*SessionStore)(nil)

const sessionColumns = `id, user_id, created_at, expires_at, user_agent, ip`

func (s *SessionStore) Create(ctx context.Context, session *trustedsession.Session) error {
	const q = `INSERT INTO trusted_sessions (` + sessionColumns + `) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := s.db.Exec(ctx, q,
		session.ID,
		session.UserID,
		session.CreatedAt,
		session.ExpiresAt,
		session.UserAgent,
		session.IP,
	)
	if err != nil {
		return errors.Join(ErrQueryFailed, err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*trustedsession.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM trusted_sessions WHERE id = $1`

	rows, err := s.db.Query(ctx, q, id)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	session, err := pgx.CollectExactlyOneRow(rows, scanSession)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, trustedsession.ErrSessionNotFound
		}
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return &session, nil
}

func (s *SessionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]trustedsession.Session, error) {
	const q = `SELECT ` + sessionColumns + ` FROM trusted_sessions WHERE user_id = $1 ORDER BY created_at`

	rows, err := s.db.Query(ctx, q, userID)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	sessions, err := pgx.CollectRows(rows, scanSession)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return sessions, nil
}

// DeleteByUserID removes the rows visible to the statement snapshot, so
// sessions created concurrently survive.
func (s *SessionStore) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM trusted_sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, errors.Join(ErrQueryFailed, err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM trusted_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, errors.Join(ErrQueryFailed, err)
	}
	return int(tag.RowsAffected()), nil
}

func scanSession(row pgx.CollectableRow) (trustedsession.Session, error) {
	var s trustedsession.Session
	err := row.Scan(&s.ID, &s.UserID, &s.CreatedAt, &s.ExpiresAt, &s.UserAgent, &s.IP)
	return s, err
}
