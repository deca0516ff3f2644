package repository

import (
	"context"
	"errors"

	"golang-market-intel/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewRunHistoryMongoRepository creates a MongoDB-backed RunHistoryRepository.
func NewRunHistoryMongoRepository(db *mongo.Database) RunHistoryRepository {
	return &runHistoryMongoRepository{coll: db.Collection(entity.RunHistory{}.TableName())}
}

type runHistoryMongoRepository struct {
	coll *mongo.Collection
}

func (r *runHistoryMongoRepository) Create(ctx context.Context, history *entity.RunHistory) error {
	if history.ID == "" {
		history.ID = uuid.NewString()
	}
	_, err := r.coll.InsertOne(ctx, history)
	return err
}

func (r *runHistoryMongoRepository) Update(ctx context.Context, history *entity.RunHistory) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": history.ID}, history, options.Replace().SetUpsert(true))
	return err
}

func (r *runHistoryMongoRepository) FindByID(ctx context.Context, id string) (*entity.RunHistory, error) {
	var history entity.RunHistory
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&history); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &history, nil
}

func (r *runHistoryMongoRepository) FindRecent(ctx context.Context, limit int) ([]entity.RunHistory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}}).SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var histories []entity.RunHistory
	if err := cur.All(ctx, &histories); err != nil {
		return nil, err
	}
	return histories, nil
}
