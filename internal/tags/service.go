package tags

import (
	"context"
	"strings"

	"github.com/bookly/bookly/internal/books"
	"github.com/bookly/bookly/internal/models"
)

// Service manages the catalog-wide tag set and tag membership on books.
type Service struct {
	repo  Repository
	books *books.Service
}

func NewService(r Repository, b *books.Service) *Service {
	return &Service{repo: r, books: b}
}

func (s *Service) List(ctx context.Context) ([]models.Tag, error) {
	return s.repo.List(ctx)
}

// AddToBook registers each named tag (get-or-create) and attaches the set
// to the book. books.ErrNotFound propagates when the book is missing.
func (s *Service) AddToBook(ctx context.Context, bookUID string, names []string) (*models.Book, error) {
	clean := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, err := s.repo.GetOrCreate(ctx, name); err != nil {
			return nil, err
		}
		clean = append(clean, name)
	}
	return s.books.AddTags(ctx, bookUID, clean)
}

// RemoveFromBook detaches a tag from the book. The canonical tag record
// stays; other books may still reference it.
func (s *Service) RemoveFromBook(ctx context.Context, bookUID, name string) (*models.Book, error) {
	return s.books.RemoveTag(ctx, bookUID, name)
}
