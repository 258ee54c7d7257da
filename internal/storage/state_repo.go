package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Keys in app_state.
const (
	StateVirtualDate = "virtual_date"
)

// StateRepo is a small key/value table for scheduler state.
type StateRepo struct {
	db DBTX
}

func NewStateRepo(db DBTX) *StateRepo {
	return &StateRepo{db: db}
}

// Get returns the value for key and whether it was set.
func (r *StateRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM app_state WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("state get %s: %w", key, err)
	}
	return v, true, nil
}

func (r *StateRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO app_state (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("state set %s: %w", key, err)
	}
	return nil
}

func (r *StateRepo) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM app_state WHERE key = ?`, key); err != nil {
		return fmt.Errorf("state delete %s: %w", key, err)
	}
	return nil
}
