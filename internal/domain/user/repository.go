package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -source=repository.go -destination=mocks/mock_repository.go -package=mocks

// Repository defines the interface for user repository operations
type Repository interface {
	// Create fails with ErrUserAlreadyExists when the email or the
	// case-insensitive username is taken.
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, userID uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByUsername matches case-insensitively.
	GetByUsername(ctx context.Context, username string) (*User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	List(ctx context.Context) ([]*User, error)
	// Update persists FullName, Phone and Avatar.
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// ResetTokenRepository defines the interface for password reset tokens
type ResetTokenRepository interface {
	Create(ctx context.Context, token *PasswordResetToken) error
	// InvalidateActive marks every unused token of the user as used.
	InvalidateActive(ctx context.Context, userID uuid.UUID) error
	// FindActive returns an unused token; expiry is left to the caller.
	FindActive(ctx context.Context, token string) (*PasswordResetToken, error)
	// Consume flips used from false to true, failing with ErrResetTokenUsed
	// if another caller got there first.
	Consume(ctx context.Context, tokenID uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
