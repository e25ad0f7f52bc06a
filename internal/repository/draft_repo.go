package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"safehaven/internal/model"
)

// DraftRepo handles MongoDB operations for saved survey drafts
type DraftRepo interface {
	Save(ctx context.Context, draft *model.Draft) error
	Get(ctx context.Context, key string) (*model.Draft, error)
	Delete(ctx context.Context, key string) error
	EnsureIndexes(ctx context.Context, maxAge time.Duration) error
}

type draftRepo struct {
	collection *mongo.Collection
}

// NewDraftRepo creates a new draft repository
func NewDraftRepo(db *mongo.Database) DraftRepo {
	return &draftRepo{
		collection: db.Collection("survey_drafts"),
	}
}

func (r *draftRepo) Save(ctx context.Context, draft *model.Draft) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": draft.Key}, draft, opts)
	return err
}

// Get returns nil, nil when no draft is stored under key
func (r *draftRepo) Get(ctx context.Context, key string) (*model.Draft, error) {
	var draft model.Draft
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&draft)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *draftRepo) Delete(ctx context.Context, key string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// EnsureIndexes lets MongoDB expire drafts that nobody loads again
func (r *draftRepo) EnsureIndexes(ctx context.Context, maxAge time.Duration) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}},
			Options: options.Index().SetName("owner"),
		},
		{
			Keys:    bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("expiry").SetExpireAfterSeconds(int32(maxAge.Seconds())),
		},
	})
	return err
}
