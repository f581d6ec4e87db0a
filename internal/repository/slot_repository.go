package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// SQLSlotRepository stores a named slot as a single row in Postgres. It
// implements storage.SlotStore so the report collection can live in the
// database instead of a local file.
type SQLSlotRepository struct {
	db   *sqlx.DB
	name string
}

// NewSQLSlotRepository constructs a slot backed by the report_slots table.
func NewSQLSlotRepository(db *sqlx.DB, name string) *SQLSlotRepository {
	return &SQLSlotRepository{db: db, name: name}
}

// Read fetches the slot payload. A missing row means the slot has never been
// written.
func (r *SQLSlotRepository) Read(ctx context.Context) ([]byte, bool, error) {
	var data []byte
	query := `SELECT data FROM report_slots WHERE name = $1`
	err := r.db.GetContext(ctx, &data, query, r.name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read slot %s: %w", r.name, err)
	}
	return data, true, nil
}

// Write upserts the slot payload in a single statement.
func (r *SQLSlotRepository) Write(ctx context.Context, data []byte) error {
	query := `
		INSERT INTO report_slots (name, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, r.name, data, time.Now()); err != nil {
		return fmt.Errorf("write slot %s: %w", r.name, err)
	}
	return nil
}
