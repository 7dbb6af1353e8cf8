package reviews

import (
	"context"
	"errors"

	"github.com/bookly/bookly/internal/books"
	"github.com/bookly/bookly/internal/models"
	"github.com/bookly/bookly/internal/users"
)

// ErrInvalidRating is returned for ratings outside 1..5.
var ErrInvalidRating = errors.New("reviews: rating must be between 1 and 5")

// Service attaches reviews to books on behalf of users. It resolves both
// collaborators before writing so a dangling reference is never stored.
type Service struct {
	repo  Repository
	users *users.Service
	books *books.Service
}

func NewService(r Repository, u *users.Service, b *books.Service) *Service {
	return &Service{repo: r, users: u, books: b}
}

// CreateInput carries the fields accepted when posting a review.
type CreateInput struct {
	Rating     int    `json:"rating" binding:"required"`
	ReviewText string `json:"review_text"`
}

// AddToBook persists a review by the user identified by email for the given
// book. users.ErrNotFound and books.ErrNotFound propagate unchanged so the
// HTTP layer can report which collaborator was missing.
func (s *Service) AddToBook(ctx context.Context, email, bookUID string, in CreateInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	book, err := s.books.Get(ctx, bookUID)
	if err != nil {
		return nil, err
	}
	rv := &models.Review{
		Rating:     in.Rating,
		ReviewText: in.ReviewText,
		UserUID:    user.UID,
		BookUID:    book.UID,
	}
	return s.repo.Create(ctx, rv)
}

// ListForBook returns a book's reviews, newest first. The book must exist.
func (s *Service) ListForBook(ctx context.Context, bookUID string) ([]models.Review, error) {
	if _, err := s.books.Get(ctx, bookUID); err != nil {
		return nil, err
	}
	return s.repo.ListByBook(ctx, bookUID)
}
