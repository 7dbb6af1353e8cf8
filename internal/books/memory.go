package books

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookly/bookly/internal/models"
)

// MemoryRepository is an in-memory Repository used in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	byUID map[string]*models.Book
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byUID: map[string]*models.Book{}}
}

func (r *MemoryRepository) Create(ctx context.Context, b *models.Book) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if b.UID == "" {
		b.UID = uuid.NewString()
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	cp := *b
	r.byUID[b.UID] = &cp
	return b, nil
}

func (r *MemoryRepository) Get(ctx context.Context, uid string) (*models.Book, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.byUID[uid]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *MemoryRepository) List(ctx context.Context) ([]models.Book, error) {
	return r.filter(func(*models.Book) bool { return true }), nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userUID string) ([]models.Book, error) {
	return r.filter(func(b *models.Book) bool { return b.UserUID == userUID }), nil
}

func (r *MemoryRepository) filter(keep func(*models.Book) bool) []models.Book {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Book{}
	for _, b := range r.byUID {
		if keep(b) {
			out = append(out, *b)
		}
	}
	// newest first, matching the Mongo sort
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *MemoryRepository) Update(ctx context.Context, uid string, upd Update) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byUID[uid]
	if !ok {
		return nil, ErrNotFound
	}
	b.Title = upd.Title
	b.Author = upd.Author
	b.Publisher = upd.Publisher
	b.PublishedDate = upd.PublishedDate
	b.PageCount = upd.PageCount
	b.Language = upd.Language
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	return &cp, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, uid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byUID[uid]; !ok {
		return ErrNotFound
	}
	delete(r.byUID, uid)
	return nil
}

func (r *MemoryRepository) AddTags(ctx context.Context, uid string, tags []string) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byUID[uid]
	if !ok {
		return nil, ErrNotFound
	}
	for _, tag := range tags {
		if !slices.Contains(b.Tags, tag) {
			b.Tags = append(b.Tags, tag)
		}
	}
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	return &cp, nil
}

func (r *MemoryRepository) RemoveTag(ctx context.Context, uid string, tag string) (*models.Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byUID[uid]
	if !ok {
		return nil, ErrNotFound
	}
	b.Tags = slices.DeleteFunc(b.Tags, func(s string) bool { return s == tag })
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	return &cp, nil
}

func (r *MemoryRepository) SetCoverKey(ctx context.Context, uid, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byUID[uid]
	if !ok {
		return ErrNotFound
	}
	b.CoverKey = key
	b.UpdatedAt = time.Now().UTC()
	return nil
}
