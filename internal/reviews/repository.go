package reviews

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bookly/bookly/internal/models"
)

// Repository defines persistence operations for book reviews.
type Repository interface {
	Create(ctx context.Context, rv *models.Review) (*models.Review, error)
	ListByBook(ctx context.Context, bookUID string) ([]models.Review, error)
}

// MongoRepository implements Repository on a Mongo collection.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, rv *models.Review) (*models.Review, error) {
	now := time.Now().UTC()
	if rv.UID == "" {
		rv.UID = uuid.NewString()
	}
	rv.CreatedAt = now
	rv.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, rv); err != nil {
		return nil, fmt.Errorf("reviews: insert: %w", err)
	}
	return rv, nil
}

func (r *MongoRepository) ListByBook(ctx context.Context, bookUID string) ([]models.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"bookUid": bookUID}, opts)
	if err != nil {
		return nil, fmt.Errorf("reviews: find: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.Review{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("reviews: decode: %w", err)
	}
	return out, nil
}

// MemoryRepository is an in-memory Repository used in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	byUID map[string]*models.Review
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byUID: map[string]*models.Review{}}
}

func (r *MemoryRepository) Create(ctx context.Context, rv *models.Review) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	if rv.UID == "" {
		rv.UID = uuid.NewString()
	}
	rv.CreatedAt = now
	rv.UpdatedAt = now
	cp := *rv
	r.byUID[rv.UID] = &cp
	return rv, nil
}

func (r *MemoryRepository) ListByBook(ctx context.Context, bookUID string) ([]models.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Review{}
	for _, rv := range r.byUID {
		if rv.BookUID == bookUID {
			out = append(out, *rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
