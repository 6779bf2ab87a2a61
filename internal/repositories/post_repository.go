package repositories

import (
	"context"

	"github.com/anonto42/sone/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for reading posts and replies
type PostRepository interface {
	GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error)
	GetAllReplies(ctx context.Context, skip, limit int64) ([]models.Reply, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	posts   *mongo.Collection
	replies *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{
		posts:   db.Collection("posts"),
		replies: db.Collection("replies"),
	}
}

// GetAllPosts retrieves all posts from MongoDB with pagination, newest first
func (r *MongoPostRepository) GetAllPosts(ctx context.Context, skip, limit int64) ([]models.Post, error) {
	var posts []models.Post
	if err := findPage(ctx, r.posts, skip, limit, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetAllReplies retrieves all replies from MongoDB with pagination, newest first
func (r *MongoPostRepository) GetAllReplies(ctx context.Context, skip, limit int64) ([]models.Reply, error) {
	var replies []models.Reply
	if err := findPage(ctx, r.replies, skip, limit, &replies); err != nil {
		return nil, err
	}
	return replies, nil
}

// findPage sorts on _id as well so pages do not overlap for equal times
func findPage(ctx context.Context, collection *mongo.Collection, skip, limit int64, out interface{}) error {
	findOptions := options.Find().SetSkip(skip).SetLimit(limit).
		SetSort(bson.D{{Key: "time", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := collection.Find(ctx, bson.D{}, findOptions)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)
	return cursor.All(ctx, out)
}
