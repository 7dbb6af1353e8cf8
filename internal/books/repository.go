package books

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bookly/bookly/internal/models"
)

// ErrNotFound reports a missing book, distinct from transport failures.
var ErrNotFound = errors.New("books: not found")

// Repository defines persistence operations for catalog books.
type Repository interface {
	Create(ctx context.Context, b *models.Book) (*models.Book, error)
	Get(ctx context.Context, uid string) (*models.Book, error)
	List(ctx context.Context) ([]models.Book, error)
	ListByUser(ctx context.Context, userUID string) ([]models.Book, error)
	Update(ctx context.Context, uid string, upd Update) (*models.Book, error)
	Delete(ctx context.Context, uid string) error
	AddTags(ctx context.Context, uid string, tags []string) (*models.Book, error)
	RemoveTag(ctx context.Context, uid string, tag string) (*models.Book, error)
	SetCoverKey(ctx context.Context, uid, key string) error
}

// Update carries the mutable book fields for a PATCH.
type Update struct {
	Title         string `json:"title"`
	Author        string `json:"author"`
	Publisher     string `json:"publisher"`
	PublishedDate string `json:"published_date"`
	PageCount     int    `json:"page_count"`
	Language      string `json:"language"`
}

// MongoRepository implements Repository on a Mongo collection.
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Create(ctx context.Context, b *models.Book) (*models.Book, error) {
	now := time.Now().UTC()
	if b.UID == "" {
		b.UID = uuid.NewString()
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, b); err != nil {
		return nil, fmt.Errorf("books: insert: %w", err)
	}
	return b, nil
}

func (r *MongoRepository) Get(ctx context.Context, uid string) (*models.Book, error) {
	var b models.Book
	if err := r.col.FindOne(ctx, bson.M{"_id": uid}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("books: find: %w", err)
	}
	return &b, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]models.Book, error) {
	return r.find(ctx, bson.M{})
}

func (r *MongoRepository) ListByUser(ctx context.Context, userUID string) ([]models.Book, error) {
	return r.find(ctx, bson.M{"userUid": userUID})
}

// find returns matching books newest-first.
func (r *MongoRepository) find(ctx context.Context, filter bson.M) ([]models.Book, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("books: find: %w", err)
	}
	defer cur.Close(ctx)
	out := []models.Book{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("books: decode: %w", err)
	}
	return out, nil
}

func (r *MongoRepository) Update(ctx context.Context, uid string, upd Update) (*models.Book, error) {
	set := bson.M{
		"title":         upd.Title,
		"author":        upd.Author,
		"publisher":     upd.Publisher,
		"publishedDate": upd.PublishedDate,
		"pageCount":     upd.PageCount,
		"language":      upd.Language,
		"updatedAt":     time.Now().UTC(),
	}
	return r.findOneAndUpdate(ctx, uid, bson.M{"$set": set})
}

func (r *MongoRepository) Delete(ctx context.Context, uid string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": uid})
	if err != nil {
		return fmt.Errorf("books: delete: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoRepository) AddTags(ctx context.Context, uid string, tags []string) (*models.Book, error) {
	update := bson.M{
		"$addToSet": bson.M{"tags": bson.M{"$each": tags}},
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, uid, update)
}

func (r *MongoRepository) RemoveTag(ctx context.Context, uid string, tag string) (*models.Book, error) {
	update := bson.M{
		"$pull": bson.M{"tags": tag},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
	}
	return r.findOneAndUpdate(ctx, uid, update)
}

func (r *MongoRepository) SetCoverKey(ctx context.Context, uid, key string) error {
	update := bson.M{"$set": bson.M{"coverKey": key, "updatedAt": time.Now().UTC()}}
	if _, err := r.findOneAndUpdate(ctx, uid, update); err != nil {
		return err
	}
	return nil
}

func (r *MongoRepository) findOneAndUpdate(ctx context.Context, uid string, update bson.M) (*models.Book, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var b models.Book
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": uid}, update, opts).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("books: update: %w", err)
	}
	return &b, nil
}
