package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// Repository persists books by their 24-hex-character identifier.
type Repository interface {
	List(ctx context.Context) ([]Book, error)
	Get(ctx context.Context, id string) (*Book, error)
	Create(ctx context.Context, book Book) (*Book, error)
	// Update replaces the mutable fields and returns the updated book,
	// or ErrBookNotFound.
	Update(ctx context.Context, id string, book Book) (*Book, error)
	// Delete removes the book and returns it as it was, or ErrBookNotFound.
	Delete(ctx context.Context, id string) (*Book, error)
}

// MongoRepository implements Repository on a MongoDB collection.
type MongoRepository struct {
	col *mongo.Collection
}

// NewMongoRepository creates the repository on the "books" collection.
func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{col: db.Collection("books")}
}

func (r *MongoRepository) List(ctx context.Context) ([]Book, error) {
	cursor, err := r.col.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	books := []Book{}
	if err := cursor.All(ctx, &books); err != nil {
		return nil, fmt.Errorf("decode books: %w", err)
	}
	return books, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*Book, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var book Book
	if err := r.col.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&book); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return &book, nil
}

func (r *MongoRepository) Create(ctx context.Context, book Book) (*Book, error) {
	if book.ID.IsZero() {
		book.ID = bson.NewObjectID()
	}
	now := time.Now().UTC().Truncate(time.Second)
	book.CreatedAt = &now
	book.UpdatedAt = &now

	if _, err := r.col.InsertOne(ctx, book); err != nil {
		return nil, fmt.Errorf("insert book: %w", err)
	}
	return &book, nil
}

func (r *MongoRepository) Update(ctx context.Context, id string, book Book) (*Book, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: book.Name},
		{Key: "price", Value: book.Price},
		{Key: "category", Value: book.Category},
		{Key: "author", Value: book.Author},
		{Key: "image", Value: book.Image},
		{Key: "updatedAt", Value: now},
	}}}

	var updated Book
	err = r.col.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
		}
		return nil, fmt.Errorf("update book: %w", err)
	}
	return &updated, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (*Book, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var deleted Book
	if err := r.col.FindOneAndDelete(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&deleted); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrBookNotFound, id)
		}
		return nil, fmt.Errorf("delete book: %w", err)
	}
	return &deleted, nil
}

func parseID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}
