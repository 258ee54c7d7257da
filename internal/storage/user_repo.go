package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/warrenleitner/moti-do-sub001/internal/xp"
)

const DefaultUserName = "default_user"

// UserRepo persists xp.User records. It satisfies xp.UserSaver.
type UserRepo struct {
	db DBTX
}

func NewUserRepo(db DBTX) *UserRepo {
	return &UserRepo{db: db}
}

// Get returns the named user, or (nil, nil) when there is none.
func (r *UserRepo) Get(ctx context.Context, name string) (*xp.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT name, total_xp FROM users WHERE name = ?`, name)

	var (
		n     string
		total int
	)
	if err := row.Scan(&n, &total); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("user get: %w", err)
	}
	return xp.RestoreUser(n, total), nil
}

func (r *UserRepo) GetOrCreate(ctx context.Context, name string) (*xp.User, error) {
	u, err := r.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if u != nil {
		return u, nil
	}

	if _, err := r.db.ExecContext(ctx, `INSERT INTO users (name, updated_at) VALUES (?, ?)`, name, formatTime(time.Now())); err != nil {
		return nil, fmt.Errorf("user insert: %w", err)
	}
	return r.Get(ctx, name)
}

// SaveUser writes the user's current XP total, creating the row if needed.
func (r *UserRepo) SaveUser(ctx context.Context, u *xp.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (name, total_xp, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET total_xp = excluded.total_xp, updated_at = excluded.updated_at
	`, u.Name(), u.TotalXP(), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("user save: %w", err)
	}
	return nil
}
