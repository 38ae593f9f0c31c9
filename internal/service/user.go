package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caredocs/caredocs/internal/model"
	"github.com/caredocs/caredocs/internal/repository"
	"github.com/caredocs/caredocs/internal/validation"
	"github.com/google/uuid"
)

var (
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrInvalidRole            = errors.New("role must be admin or worker")
	ErrEmailAlreadyExists     = errors.New("email already exists")
	ErrInvalidCurrentPassword = errors.New("current password is incorrect")
	ErrInvalidName            = errors.New("invalid name")
	ErrWeakPassword           = errors.New("password rejected")
)

type UserService struct {
	userRepository repository.UserRepository
}

func NewUserService(userRepository repository.UserRepository) *UserService {
	return &UserService{
		userRepository: userRepository,
	}
}

func (s *UserService) ByID(ctx context.Context, id string) (*model.User, error) {
	return s.userRepository.ByID(ctx, id)
}

// Create provisions an account. Accounts are created by operators, there is no self sign-up.
func (s *UserService) Create(ctx context.Context, email, name, role, password string) (*model.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := validation.ValidateEmail(email); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEmail, err)
	}
	if !model.ValidRole(role) {
		return nil, ErrInvalidRole
	}
	if err := validation.ValidateName(name); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		Role:         role,
		PasswordHash: &hash,
		CreatedAt:    time.Now().UTC(),
	}

	err = s.userRepository.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return nil, ErrEmailAlreadyExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *UserService) List(ctx context.Context) ([]*model.User, error) {
	return s.userRepository.List(ctx)
}

// UpdatePassword replaces the password after checking the current one.
func (s *UserService) UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepository.ByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}

	if !user.HasPassword() || ComparePassword(currentPassword, *user.PasswordHash) != nil {
		return ErrInvalidCurrentPassword
	}

	return s.SetPassword(ctx, userID, newPassword)
}

// SetPassword replaces the password without checking the old one. Used by operators.
func (s *UserService) SetPassword(ctx context.Context, userID, password string) error {
	err := validation.ValidatePassword(password)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	err = s.userRepository.UpdatePassword(ctx, userID, hash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
