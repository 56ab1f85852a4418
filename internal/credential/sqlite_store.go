package credential

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cosmic-chat/backend/internal/model"
)

// SQLiteStore keeps the credential in the single-row `credential` table.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) Set(ctx context.Context, token string) error {
	query := `
		INSERT INTO credential (id, token, valid, last_validated) VALUES (1, ?, 1, ?)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, valid = excluded.valid, last_validated = excluded.last_validated
	`
	if _, err := s.db.ExecContext(ctx, query, token, s.now().UTC()); err != nil {
		return fmt.Errorf("could not store credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) MarkInvalid(ctx context.Context) error {
	query := "UPDATE credential SET valid = 0, last_validated = ? WHERE id = 1"
	if _, err := s.db.ExecContext(ctx, query, s.now().UTC()); err != nil {
		return fmt.Errorf("could not mark credential invalid: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context) (string, bool, error) {
	rec, err := s.Record(ctx)
	if err != nil || rec == nil {
		return "", false, err
	}
	return rec.Token, rec.Token != "", nil
}

func (s *SQLiteStore) Record(ctx context.Context) (*model.Credential, error) {
	query := "SELECT token, valid, last_validated FROM credential WHERE id = 1"
	var (
		rec   model.Credential
		valid sql.NullBool
	)
	err := s.db.QueryRowContext(ctx, query).Scan(&rec.Token, &valid, &rec.LastValidated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("could not read credential: %w", err)
	}
	if valid.Valid {
		rec.Valid = boolPtr(valid.Bool)
	}
	return &rec, nil
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM credential WHERE id = 1"); err != nil {
		return fmt.Errorf("could not clear credential: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Status(ctx context.Context) (Status, error) {
	rec, err := s.Record(ctx)
	if err != nil {
		return "", err
	}
	return StatusOf(rec), nil
}
