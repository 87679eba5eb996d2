package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no user.
var ErrNotFound = errors.New("user not found")

// User represents a registered account.
type User struct {
	ID           int64
	UserID       string // stable uuid exposed on the wire
	Username     string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
}

// UserStore provides persistence for user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, userID, username, passwordHash string) (*User, error)
	GetUserByUsername(ctx context.Context, username string) (*User, error)
	GetUserByUserID(ctx context.Context, userID string) (*User, error)
}

// Store is the full persistence surface of the server.
type Store interface {
	UserStore
	Close() error
}
