package pgstore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dmitrymomot/twofactor/pkg/backupcode"
)

// BackupCodeStore implements backupcode.Store.
type BackupCodeStore struct {
	db DB
}

// NewBackupCodeStore creates a BackupCodeStore on db.
func NewBackupCodeStore(db DB) *BackupCodeStore {
	return &BackupCodeStore{db: db}
}

var _ backupcode.Store = (*BackupCodeStore)(nil)

// Replace deletes the unused codes and copies the new batch in within one
// transaction.
func (s *BackupCodeStore) Replace(ctx context.Context, userID uuid.UUID, codes []backupcode.Code) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return errors.Join(ErrTxFailed, err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM backup_codes WHERE user_id = $1 AND NOT used`, userID); err != nil {
		return errors.Join(ErrQueryFailed, err)
	}

	rows := make([][]any, 0, len(codes))
	for _, c := range codes {
		rows = append(rows, []any{c.ID, userID, c.Hash, c.Used, c.UsedAt, c.CreatedAt})
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"backup_codes"},
		[]string{"id", "user_id", "code_hash", "used", "used_at", "created_at"},
		pgx.CopyFromRows(rows),
	); err != nil {
		return errors.Join(ErrQueryFailed, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Join(ErrTxFailed, err)
	}
	return nil
}

func (s *BackupCodeStore) Consume(ctx context.Context, userID uuid.UUID, hash string, usedAt time.Time) (bool, error) {
	const q = `
		UPDATE backup_codes
		SET used = TRUE, used_at = $3
		WHERE user_id = $1
		  AND code_hash = $2
		  AND NOT used
	`
	tag, err := s.db.Exec(ctx, q, userID, hash, usedAt)
	if err != nil {
		return false, errors.Join(ErrQueryFailed, err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *BackupCodeStore) CountUnused(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM backup_codes WHERE user_id = $1 AND NOT used`, userID).Scan(&n)
	if err != nil {
		return 0, errors.Join(ErrQueryFailed, err)
	}
	return n, nil
}

func (s *BackupCodeStore) DeleteAll(ctx context.Context, userID uuid.UUID) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM backup_codes WHERE user_id = $1`, userID); err != nil {
		return errors.Join(ErrQueryFailed, err)
	}
	return nil
}
