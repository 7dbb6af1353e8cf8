package users

import (
	"context"
	"errors"

	"github.com/bookly/bookly/internal/models"
	"github.com/bookly/bookly/pkg/cryptox"
)

// Service encapsulates user-related business logic
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// RegisterInput carries the signup fields; the plaintext password never
// leaves this package unhashed.
type RegisterInput struct {
	Username  string
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register hashes the password and persists a new user. The caller is
// expected to have checked for duplicates via Exists first.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	digest, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Username:     in.Username,
		Email:        in.Email,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: digest,
	}
	return s.repo.Create(ctx, u)
}

func (s *Service) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// Exists reports whether a user with the email is already registered.
// Transport failures propagate; only a definite miss maps to false.
func (s *Service) Exists(ctx context.Context, email string) (bool, error) {
	_, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
