package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/twofactor/pkg/pg"
	"github.com/dmitrymomot/twofactor/pkg/twofactor"
)

// UserStore implements twofactor.UserStore.
type UserStore struct {
	db DB
}

// NewUserStore creates a UserStore on db.
func NewUserStore(db DB) *UserStore {
	return &UserStore{db: db}
}

var _ twofactor.UserStore = (*UserStore)(nil)

func (s *UserStore) GetState(ctx context.Context, userID uuid.UUID) (*twofactor.State, error) {
	const q = `
		SELECT enabled, secret, setup_at, pending_since, last_accepted_step, cascade_pending
		FROM two_factor_users
		WHERE user_id = $1
	`

	st := &twofactor.State{UserID: userID}
	err := s.db.QueryRow(ctx, q, userID).Scan(
		&st.Enabled,
		&st.Secret,
		&st.SetupAt,
		&st.PendingSince,
		&st.LastAcceptedStep,
		&st.CascadePending,
	)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return &twofactor.State{UserID: userID}, nil
		}
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return st, nil
}

func (s *UserStore) MarkPending(ctx context.Context, userID uuid.UUID, at time.Time) (bool, error) {
	const q = `
		INSERT INTO two_factor_users (user_id, pending_since)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET pending_since = EXCLUDED.pending_since,
		    updated_at    = NOW()
		WHERE NOT two_factor_users.enabled
		  AND NOT two_factor_users.cascade_pending
	`
	return s.exec(ctx, q, userID, at)
}

func (s *UserStore) Enable(ctx context.Context, userID uuid.UUID, sealedSecret []byte, at time.Time, step int64) (bool, error) {
	const q = `
		UPDATE two_factor_users
		SET enabled            = TRUE,
		    secret             = $2,
		    setup_at           = $3,
		    pending_since      = NULL,
		    last_accepted_step = $4,
		    updated_at         = NOW()
		WHERE user_id = $1
		  AND NOT enabled
		  AND pending_since IS NOT NULL
	`
	return s.exec(ctx, q, userID, sealedSecret, at, step)
}

func (s *UserStore) Disable(ctx context.Context, userID uuid.UUID) (bool, error) {
	const q = `
		UPDATE two_factor_users
		SET enabled            = FALSE,
		    secret             = NULL,
		    setup_at           = NULL,
		    pending_since      = NULL,
		    last_accepted_step = 0,
		    cascade_pending    = TRUE,
		    updated_at         = NOW()
		WHERE user_id = $1
		  AND enabled
	`
	return s.exec(ctx, q, userID)
}

func (s *UserStore) AdvanceStep(ctx context.Context, userID uuid.UUID, step int64) (bool, error) {
	const q = `
		UPDATE two_factor_users
		SET last_accepted_step = $2
		WHERE user_id = $1
		  AND enabled
		  AND last_accepted_step < $2
	`
	return s.exec(ctx, q, userID, step)
}

func (s *UserStore) ClearCascade(ctx context.Context, userID uuid.UUID) error {
	const q = `UPDATE two_factor_users SET cascade_pending = FALSE, updated_at = NOW() WHERE user_id = $1`
	_, err := s.exec(ctx, q, userID)
	return err
}

func (s *UserStore) ListCascadePending(ctx context.Context, limit int) ([]uuid.UUID, error) {
	const q = `
		SELECT user_id
		FROM two_factor_users
		WHERE cascade_pending
		  AND NOT enabled
		  AND pending_since IS NULL
		ORDER BY updated_at
		LIMIT $1
	`

	var lim *int
	if limit > 0 {
		lim = &limit
	}

	rows, err := s.db.Query(ctx, q, lim)
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[uuid.UUID])
	if err != nil {
		return nil, errors.Join(ErrQueryFailed, err)
	}
	return ids, nil
}

func (s *UserStore) exec(ctx context.Context, q string, args ...any) (bool, error) {
	tag, err := s.db.Exec(ctx, q, args...)
	if err != nil {
		return false, errors.Join(ErrQueryFailed, err)
	}
	return tag.RowsAffected() > 0, nil
}
