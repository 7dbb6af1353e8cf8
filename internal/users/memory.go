package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bookly/bookly/internal/models"
)

// MemoryRepository is an in-memory Repository used in tests and local
// development when no MongoDB is configured.
type MemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byEmail: map[string]*models.User{}}
}

func (r *MemoryRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if u.UID == "" {
		u.UID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = models.RoleUser
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now

	cp := *u
	r.byEmail[u.Email] = &cp
	return u, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}
