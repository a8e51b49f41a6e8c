package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/mujeeb218353/youtube-backend/domain"
)

// VideoRepository is the MongoDB implementation of domain.VideoRepository.
type VideoRepository struct {
	videos *mongo.Collection
}

// NewVideoRepository creates the repository and ensures its indexes.
func NewVideoRepository(ctx context.Context, db *mongo.Database) (*VideoRepository, error) {
	repo := &VideoRepository{videos: db.Collection(VideosCollection)}
	if err := repo.createIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *VideoRepository) createIndexes(ctx context.Context) error {
	_, err := r.videos.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "title", Value: "text"}, {Key: "description", Value: "text"}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create video indexes: %w", err)
	}
	return nil
}

func (r *VideoRepository) Create(ctx context.Context, video *domain.Video) error {
	if _, err := r.videos.InsertOne(ctx, video); err != nil {
		return fmt.Errorf("insert video: %w", err)
	}
	return nil
}

func (r *VideoRepository) FindByID(ctx context.Context, id string) (*domain.Video, error) {
	var video domain.Video
	err := r.videos.FindOne(ctx, bson.M{"_id": id}).Decode(&video)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find video by id: %w", err)
	}
	return &video, nil
}

var sortableFields = map[string]string{
	"createdAt": "created_at",
	"views":     "views",
	"duration":  "duration",
	"title":     "title",
}

func (r *VideoRepository) List(ctx context.Context, filter domain.VideoListFilter) ([]*domain.Video, int64, error) {
	query := bson.M{}
	if !filter.IncludeUnpublished {
		query["is_published"] = true
	}
	if filter.OwnerID != "" {
		query["owner_id"] = filter.OwnerID
	}
	if filter.Query != "" {
		query["$text"] = bson.M{"$search": filter.Query}
	}

	total, err := r.videos.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	sortField, ok := sortableFields[filter.SortBy]
	if !ok {
		sortField = "created_at"
	}
	direction := -1
	if filter.SortAsc {
		direction = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortField, Value: direction}}).
		SetSkip((filter.Page - 1) * filter.Limit).
		SetLimit(filter.Limit)

	cursor, err := r.videos.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find videos: %w", err)
	}
	defer cursor.Close(ctx)

	var videos []*domain.Video
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, 0, fmt.Errorf("decode videos: %w", err)
	}
	return videos, total, nil
}

func (r *VideoRepository) Update(ctx context.Context, id string, upd domain.VideoUpdate) (*domain.Video, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Title != nil {
		set["title"] = *upd.Title
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.Thumbnail != nil {
		set["thumbnail"] = *upd.Thumbnail
	}
	if upd.IsPublished != nil {
		set["is_published"] = *upd.IsPublished
	}

	var video domain.Video
	err := r.videos.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&video)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update video: %w", err)
	}
	return &video, nil
}

func (r *VideoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.videos.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *VideoRepository) IncrementViews(ctx context.Context, id string) error {
	res, err := r.videos.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"views": 1}},
	)
	if err != nil {
		return fmt.Errorf("increment views: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.VideoRepository = (*VideoRepository)(nil)
