package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"user-registry/internal/domain"
	"user-registry/internal/repository"
	"user-registry/internal/validation"
)

var (
	// ErrUserNotFound indicates no user is registered under the given email.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailRequired is returned when an email lookup key is missing from the request.
	ErrEmailRequired = errors.New("email is required")
	// ErrUserAlreadyExists is returned when creating a user with an email already in use.
	ErrUserAlreadyExists = errors.New("user already exists")
)

// PasswordHasher turns a plaintext password into a salted one-way hash.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
}

// UserService describes user lifecycle operations.
//
// Create and Update return validation.Errors when the input fails field checks.
type UserService interface {
	Create(ctx context.Context, fields validation.Fields) (*domain.User, error)
	Update(ctx context.Context, fields validation.Fields) error
	Delete(ctx context.Context, fields validation.Fields) error
	List(ctx context.Context) ([]domain.User, error)
}

// Options tunes service behaviour.
type Options struct {
	// ListPasswords keeps password hashes in List results.
	ListPasswords bool
	Logger        *logrus.Logger
}

type userService struct {
	users      repository.UserRepository
	hasher     PasswordHasher
	projection domain.Projection
	log        *logrus.Logger
}

func NewUserService(users repository.UserRepository, hasher PasswordHasher, opts Options) UserService {
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	return &userService{
		users:  users,
		hasher: hasher,
		projection: domain.Projection{
			FullName: true,
			Email:    true,
			Password: opts.ListPasswords,
		},
		log: opts.Logger,
	}
}

func (s *userService) Create(ctx context.Context, fields validation.Fields) (*domain.User, error) {
	if err := validation.ValidateNewUser(fields); err != nil {
		return nil, err
	}

	fullName, _ := fields.Lookup(validation.FieldFullName)
	email, _ := fields.Lookup(validation.FieldEmail)
	password, _ := fields.Lookup(validation.FieldPassword)

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user created")
	return user, nil
}

func (s *userService) Update(ctx context.Context, fields validation.Fields) error {
	if err := validation.ValidateUserEdit(fields); err != nil {
		return err
	}

	email, ok := lookupEmail(fields)
	if !ok {
		return ErrEmailRequired
	}

	user, err := s.find(ctx, email)
	if err != nil {
		return err
	}

	fullName, _ := fields.Lookup(validation.FieldFullName)
	password, _ := fields.Lookup(validation.FieldPassword)

	hash, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return err
	}

	if err := s.users.UpdateByID(ctx, user.ID, domain.UserPatch{
		FullName:     fullName,
		PasswordHash: hash,
	}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.log.WithField("user_id", user.ID).Warn("password replaced without verifying the previous one")
	return nil
}

func (s *userService) Delete(ctx context.Context, fields validation.Fields) error {
	email, ok := lookupEmail(fields)
	if !ok {
		return ErrEmailRequired
	}

	user, err := s.find(ctx, email)
	if err != nil {
		return err
	}

	if err := s.users.DeleteByID(ctx, user.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	s.log.WithField("user_id", user.ID).Info("user deleted")
	return nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.FindAll(ctx, s.projection)
	if err != nil {
		return nil, err
	}
	s.log.WithField("count", len(users)).Debug("users listed")
	return users, nil
}

func (s *userService) find(ctx context.Context, email string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user, nil
}

// lookupEmail extracts the email key; only a non-empty string counts as present.
func lookupEmail(fields validation.Fields) (string, bool) {
	email, ok := fields.Lookup(validation.FieldEmail)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}
