package books

import (
	"context"

	"github.com/bookly/bookly/internal/models"
)

// Service wraps repository operations with catalog business logic.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

// CreateInput carries the fields accepted when adding a book.
type CreateInput struct {
	Title         string `json:"title" binding:"required"`
	Author        string `json:"author" binding:"required"`
	Publisher     string `json:"publisher"`
	PublishedDate string `json:"published_date"`
	PageCount     int    `json:"page_count"`
	Language      string `json:"language"`
}

// Create persists a new book owned by userUID.
func (s *Service) Create(ctx context.Context, in CreateInput, userUID string) (*models.Book, error) {
	b := &models.Book{
		Title:         in.Title,
		Author:        in.Author,
		Publisher:     in.Publisher,
		PublishedDate: in.PublishedDate,
		PageCount:     in.PageCount,
		Language:      in.Language,
		UserUID:       userUID,
	}
	return s.repo.Create(ctx, b)
}

func (s *Service) Get(ctx context.Context, uid string) (*models.Book, error) {
	return s.repo.Get(ctx, uid)
}

func (s *Service) List(ctx context.Context) ([]models.Book, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListByUser(ctx context.Context, userUID string) ([]models.Book, error) {
	return s.repo.ListByUser(ctx, userUID)
}

func (s *Service) Update(ctx context.Context, uid string, upd Update) (*models.Book, error) {
	return s.repo.Update(ctx, uid, upd)
}

func (s *Service) Delete(ctx context.Context, uid string) error {
	return s.repo.Delete(ctx, uid)
}

func (s *Service) AddTags(ctx context.Context, uid string, tags []string) (*models.Book, error) {
	return s.repo.AddTags(ctx, uid, tags)
}

func (s *Service) RemoveTag(ctx context.Context, uid string, tag string) (*models.Book, error) {
	return s.repo.RemoveTag(ctx, uid, tag)
}

func (s *Service) SetCoverKey(ctx context.Context, uid, key string) error {
	return s.repo.SetCoverKey(ctx, uid, key)
}
