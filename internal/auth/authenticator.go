// Package auth provides the pluggable credential verifier consumed by the
// login and logout commands. The dispatch core only sees the Authenticator
// contract; backends range from an always-succeed stub to a SQLite-backed
// store issuing JWTs.
package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned when neither password nor token checks out.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Result is the outcome of an authentication attempt.
type Result struct {
	OK          bool
	UserID      string
	DisplayName string
	Token       string
}

// Authenticator verifies credentials and issues session identity.
type Authenticator interface {
	AuthenticatePassword(ctx context.Context, username, password string) (Result, error)
	AuthenticateToken(ctx context.Context, token string) (Result, error)
	Deauthenticate(ctx context.Context, userID string) error
}

// Static accepts any credentials and mints a fresh identity per login.
// It is the development stub backend.
type Static struct{}

func NewStatic() *Static { return &Static{} }

func (*Static) AuthenticatePassword(_ context.Context, username, _ string) (Result, error) {
	return Result{
		OK:          true,
		UserID:      uuid.NewString(),
		DisplayName: username,
		Token:       uuid.NewString(),
	}, nil
}

func (*Static) AuthenticateToken(context.Context, string) (Result, error) {
	return Result{
		OK:     true,
		UserID: uuid.NewString(),
		Token:  uuid.NewString(),
	}, nil
}

func (*Static) Deauthenticate(context.Context, string) error { return nil }
