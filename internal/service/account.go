// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quillfeed/quillfeed/internal/auth"
	"github.com/quillfeed/quillfeed/internal/metrics"
	"github.com/quillfeed/quillfeed/internal/model"
	"github.com/quillfeed/quillfeed/internal/repository"
)

// Account service errors.
var (
	ErrNameRequired      = errors.New("name is required")
	ErrUsernameTooShort  = errors.New("username must be at least 3 characters")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrPasswordTooShort  = errors.New("password must be at least 6 characters")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrEmailTaken        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound      = errors.New("user not found")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

// Pagination bounds shared by list endpoints.
const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

// NormalizePage clamps page/limit query values into their valid ranges.
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// AccountService handles registration, login and profile management.
type AccountService struct {
	repo    *repository.Repository
	codec   *auth.Codec
	metrics metrics.Recorder
}

// NewAccountService creates a new AccountService.
func NewAccountService(repo *repository.Repository, codec *auth.Codec, recorder metrics.Recorder) *AccountService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AccountService{
		repo:    repo,
		codec:   codec,
		metrics: recorder,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Username        string
	Name            string
	Email           string
	Bio             *string
	Password        string
	PasswordConfirm string
}

// validate checks all fields before any crypto or database work.
func (in *RegisterInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrNameRequired
	}
	if len(in.Username) < minUsernameLength {
		return ErrUsernameTooShort
	}
	if !emailRegex.MatchString(in.Email) {
		return ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if in.Password != in.PasswordConfirm {
		return ErrPasswordMismatch
	}
	return nil
}

// Register creates a new account with the default user role.
// The plaintext password exists only for the duration of this call.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        strings.ToLower(input.Email),
		Name:         input.Name,
		Bio:          input.Bio,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	stored, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUsernameExists):
			return nil, ErrUsernameTaken
		case errors.Is(err, repository.ErrEmailExists):
			return nil, ErrEmailTaken
		default:
			return nil, fmt.Errorf("failed to register user: %w", err)
		}
	}

	s.metrics.IncUserRegistered()

	return stored, nil
}

// Login verifies credentials and issues a bearer token.
// Unknown email and wrong password collapse into one error so the
// response never confirms whether an address is registered.
func (s *AccountService) Login(ctx context.Context, email, password string, now time.Time) (string, *model.User, error) {
	if !emailRegex.MatchString(email) {
		return "", nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return "", nil, ErrPasswordTooShort
	}

	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncLoginFailure()
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		// A malformed stored hash is server-side corruption, not a
		// credential failure.
		return "", nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		s.metrics.IncLoginFailure()
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.codec.Issue(user.ID, user.Role, now)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.metrics.IncLoginSuccess()

	return token, user, nil
}

// GetUser fetches a user by id.
func (s *AccountService) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListUsers returns a page of users, newest first.
func (s *AccountService) ListUsers(ctx context.Context, page, limit int) ([]*model.User, error) {
	page, limit = NormalizePage(page, limit)

	users, err := s.repo.ListUsers(ctx, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateName changes the requester's display name.
func (s *AccountService) UpdateName(ctx context.Context, userID uuid.UUID, name string) (*model.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}

	user, err := s.repo.UpdateUserName(ctx, userID, name)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update name: %w", err)
	}
	return user, nil
}

// ChangePasswordInput defines input for a password change.
type ChangePasswordInput struct {
	OldPassword        string
	NewPassword        string
	NewPasswordConfirm string
}

// ChangePassword verifies the old password and stores a hash of the new one.
func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	if len(input.NewPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}
	if input.NewPassword != input.NewPasswordConfirm {
		return ErrPasswordMismatch
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	match, err := auth.VerifyPassword(input.OldPassword, user.PasswordHash)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordEmpty) || errors.Is(err, auth.ErrPasswordTooLong) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateUserPassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
