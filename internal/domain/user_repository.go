package domain

import (
	"context"
	"time"
)

type UserRepository interface {
	// Create persists a new user and returns the stored row.
	// ErrDuplicateUsername is returned when the username is taken.
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	// UpdateProfile replaces the email and the profile document wholesale.
	UpdateProfile(ctx context.Context, id int64, email *string, profile string) (User, error)
	// SetProfile replaces only the profile document.
	SetProfile(ctx context.Context, id int64, profile string) error
	UpdatePasswordHash(ctx context.Context, id int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	Count(ctx context.Context) (int64, error)
}
