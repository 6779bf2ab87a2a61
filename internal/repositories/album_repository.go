package repositories

import (
	"context"

	"github.com/anonto42/sone/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// AlbumRepository defines the interface for album tree operations
type AlbumRepository interface {
	SaveAlbums(ctx context.Context, soneID string, docs []models.AlbumDocument) error
	LoadAlbums(ctx context.Context, soneID string) ([]models.AlbumDocument, error)
}

type mongoAlbumRepository struct {
	collection *mongo.Collection
}

func NewMongoAlbumRepository(db *mongo.Database) AlbumRepository {
	return &mongoAlbumRepository{collection: db.Collection("albums")}
}

// SaveAlbums replaces the whole tree of a Sone
func (r *mongoAlbumRepository) SaveAlbums(ctx context.Context, soneID string, docs []models.AlbumDocument) error {
	if _, err := r.collection.DeleteMany(ctx, bson.M{"sone_id": soneID}); err != nil {
		return err
	}
	if len(docs) == 0 {
		return nil
	}
	items := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		items = append(items, doc)
	}
	_, err := r.collection.InsertMany(ctx, items)
	return err
}

// LoadAlbums returns the stored documents of a Sone ordered by position
func (r *mongoAlbumRepository) LoadAlbums(ctx context.Context, soneID string) ([]models.AlbumDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "parent_id", Value: 1}, {Key: "position", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"sone_id": soneID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []models.AlbumDocument
	if err = cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}
