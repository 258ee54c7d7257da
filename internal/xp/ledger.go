// Package xp holds the user's XP total and the single operation that
// changes it.
package xp

import (
	"context"
	"fmt"
)

// User is the XP-carrying player record. The total is only changed through
// AddXP so that every mutation is persisted.
type User struct {
	name  string
	total int
}

func NewUser(name string) *User {
	return &User{name: name}
}

// RestoreUser rebuilds a user loaded from storage.
func RestoreUser(name string, total int) *User {
	return &User{name: name, total: total}
}

func (u *User) Name() string { return u.name }
func (u *User) TotalXP() int { return u.total }
func (u *User) Level() int { return LevelForTotalXP(u.total) }

// UserSaver persists a user after its XP changes.
type UserSaver interface {
	SaveUser(ctx context.Context, u *User) error
}

// UserSaverFunc adapts a function to UserSaver.
type UserSaverFunc func(ctx context.Context, u *User) error

func (f UserSaverFunc) SaveUser(ctx context.Context, u *User) error {
	return f(ctx, u)
}

// AddXP applies delta to the user's total and saves the user. Delta may be
// negative and the total may go below zero. The user is saved on every call.
func AddXP(ctx context.Context, u *User, saver UserSaver, delta int) error {
	if u == nil {
		return fmt.Errorf("add xp: nil user")
	}
	u.total += delta
	if err := saver.SaveUser(ctx, u); err != nil {
		return fmt.Errorf("add xp: save user %q: %w", u.name, err)
	}
	return nil
}
