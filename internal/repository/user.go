package repository

import (
	"context"
	"errors"

	"user-registry/internal/domain"
)

var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when an insert collides with the unique email index.
	ErrDuplicateEmail = errors.New("user already exists")
)

// UserRepository defines persistence operations for User records.
type UserRepository interface {
	Init(ctx context.Context) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Insert(ctx context.Context, user *domain.User) error
	UpdateByID(ctx context.Context, id string, patch domain.UserPatch) error
	DeleteByID(ctx context.Context, id string) error
	FindAll(ctx context.Context, projection domain.Projection) ([]domain.User, error)
}
