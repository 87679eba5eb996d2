package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mkarpis/hivechat-server/internal/store"
)

var (
	// ErrUserExists is returned when registering an existing username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when a username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when a password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
)

// StoreBackend verifies credentials against a UserStore and issues JWTs.
type StoreBackend struct {
	store     store.UserStore
	jwtConfig *JWTConfig
}

func NewStoreBackend(userStore store.UserStore, jwtConfig *JWTConfig) *StoreBackend {
	return &StoreBackend{store: userStore, jwtConfig: jwtConfig}
}

// Register creates a new account with a hashed password and returns it.
func (b *StoreBackend) Register(ctx context.Context, username, password string) (*store.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 32 {
		return nil, ErrInvalidUsername
	}
	if len(password) < 6 {
		return nil, ErrInvalidPassword
	}

	if existing, err := b.store.GetUserByUsername(ctx, username); err == nil && existing != nil {
		return nil, ErrUserExists
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := b.store.CreateUser(ctx, uuid.NewString(), username, hashed)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// AuthenticatePassword verifies username/password and mints a token.
func (b *StoreBackend) AuthenticatePassword(ctx context.Context, username, password string) (Result, error) {
	user, err := b.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, nil
		}
		return Result{}, fmt.Errorf("lookup user: %w", err)
	}

	if err := ComparePassword(user.PasswordHash, password); err != nil {
		return Result{}, nil
	}

	token, err := GenerateToken(b.jwtConfig, user.UserID, user.Username)
	if err != nil {
		return Result{}, fmt.Errorf("generate token: %w", err)
	}

	return Result{
		OK:          true,
		UserID:      user.UserID,
		DisplayName: displayName(user),
		Token:       token,
	}, nil
}

// AuthenticateToken validates a token and recovers the user it names.
func (b *StoreBackend) AuthenticateToken(ctx context.Context, token string) (Result, error) {
	claims, err := ValidateToken(b.jwtConfig, token)
	if err != nil {
		return Result{}, nil
	}

	user, err := b.store.GetUserByUserID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, nil
		}
		return Result{}, fmt.Errorf("lookup user: %w", err)
	}

	return Result{
		OK:          true,
		UserID:      user.UserID,
		DisplayName: displayName(user),
		Token:       token,
	}, nil
}

// Deauthenticate is a no-op for stateless tokens.
func (*StoreBackend) Deauthenticate(context.Context, string) error { return nil }

func displayName(user *store.User) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Username
}
