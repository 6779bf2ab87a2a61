package repositories

import (
	"context"
	"time"

	"github.com/anonto42/sone/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// KnownPostRepository defines the interface for known-post operations
type KnownPostRepository interface {
	MarkKnown(ctx context.Context, postID string) error
	LoadKnown(ctx context.Context) ([]string, error)
}

type mongoKnownPostRepository struct {
	collection *mongo.Collection
}

func NewMongoKnownPostRepository(db *mongo.Database) KnownPostRepository {
	return &mongoKnownPostRepository{collection: db.Collection("known_posts")}
}

// MarkKnown upserts on post_id so repeated calls keep one document
func (r *mongoKnownPostRepository) MarkKnown(ctx context.Context, postID string) error {
	filter := bson.M{"post_id": postID}
	update := bson.M{"$setOnInsert": bson.M{"post_id": postID, "marked_at": time.Now()}}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoKnownPostRepository) LoadKnown(ctx context.Context) ([]string, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var known []models.KnownPost
	if err = cursor.All(ctx, &known); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(known))
	for _, k := range known {
		ids = append(ids, k.PostID)
	}
	return ids, nil
}
