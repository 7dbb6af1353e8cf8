package tags

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

// Repository defines persistence operations for catalog tags.
type Repository interface {
	List(ctx context.Context) ([]models.Tag, error)
	// GetOrCreate returns the canonical tag for name, creating it if absent.
	GetOrCreate(ctx context.Context, name string) (*models.Tag, error)
}

// MongoRepository implements Repository on a Mongo collection.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) List(ctx context.Context) ([]models.Tag, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("tags: find: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.Tag{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("tags: decode: %w", err)
	}
	return out, nil
}

func (r *MongoRepository) GetOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	filter := bson.M{"name": name}
	update := bson.M{"$setOnInsert": bson.M{
		"_id":       uuid.NewString(),
		"name":      name,
		"createdAt": time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var tag models.Tag
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&tag); err != nil {
		return nil, fmt.Errorf("tags: upsert: %w", err)
	}
	return &tag, nil
}

// MemoryRepository is an in-memory Repository used in tests.
type MemoryRepository struct {
	mu     sync.RWMutex
	byName map[string]*models.Tag
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byName: map[string]*models.Tag{}}
}

func (r *MemoryRepository) List(ctx context.Context) ([]models.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []models.Tag{}
	for _, tag := range r.byName {
		out = append(out, *tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *MemoryRepository) GetOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if tag, ok := r.byName[name]; ok {
		cp := *tag
		return &cp, nil
	}
	tag := &models.Tag{UID: uuid.NewString(), Name: name, CreatedAt: time.Now().UTC()}
	r.byName[name] = tag
	cp := *tag
	return &cp, nil
}
