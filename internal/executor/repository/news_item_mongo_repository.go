package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-market-intel/internal/entity"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewNewsItemMongoRepository creates a MongoDB-backed NewsItemRepository and
// ensures the unique url index that makes insertion idempotent.
func NewNewsItemMongoRepository(ctx context.Context, db *mongo.Database) (NewsItemRepository, error) {
	coll := db.Collection(entity.NewsItem{}.TableName())
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "published_at", Value: -1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create market_news indexes: %w", err)
	}
	return &newsItemMongoRepository{coll: coll}, nil
}

type newsItemMongoRepository struct {
	coll *mongo.Collection
}

func (r *newsItemMongoRepository) ExistsByURL(ctx context.Context, url string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"url": url}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check news url: %w", err)
	}
	return n > 0, nil
}

func (r *newsItemMongoRepository) CreateIgnoreConflict(ctx context.Context, item *entity.NewsItem) (bool, error) {
	now := time.Now().UTC()
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Status == "" {
		item.Status = entity.StatusPendingEnrichment
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, item); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to insert news item: %w", err)
	}
	return true, nil
}

func (r *newsItemMongoRepository) FindByStatus(ctx context.Context, status entity.NewsStatus, limit int) ([]entity.NewsItem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{"status": status}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find news by status: %w", err)
	}

	var items []entity.NewsItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode news: %w", err)
	}
	return items, nil
}

func (r *newsItemMongoRepository) MarkEnriched(ctx context.Context, id string, sentiment float64, insight string) error {
	return r.transition(ctx, id, entity.StatusEnriched, bson.M{
		"sentiment_score":  sentiment,
		"ai_summary":       insight,
		"enrichment_error": "",
	})
}

func (r *newsItemMongoRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.transition(ctx, id, entity.StatusFailed, bson.M{
		"enrichment_error": reason,
	})
}

func (r *newsItemMongoRepository) transition(ctx context.Context, id string, next entity.NewsStatus, set bson.M) error {
	if !entity.StatusPendingEnrichment.CanTransitionTo(next) {
		return fmt.Errorf("illegal status transition to %s", next)
	}
	set["status"] = next
	set["updated_at"] = time.Now().UTC()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": entity.StatusPendingEnrichment},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("failed to mark news item %s as %s: %w", id, next, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *newsItemMongoRepository) FindByID(ctx context.Context, id string) (*entity.NewsItem, error) {
	var item entity.NewsItem
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&item); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (r *newsItemMongoRepository) List(ctx context.Context, filter NewsItemFilter) ([]entity.NewsItem, int64, error) {
	query := bson.M{}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	total, err := r.coll.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count news: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "published_at", Value: -1}}).
		SetSkip(int64(filter.Offset)).
		SetLimit(int64(filter.Limit))
	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list news: %w", err)
	}

	var items []entity.NewsItem
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("failed to decode news: %w", err)
	}
	return items, total, nil
}

func (r *newsItemMongoRepository) CountByStatus(ctx context.Context) (map[entity.NewsStatus]int64, error) {
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to count news by status: %w", err)
	}

	var rows []struct {
		Status entity.NewsStatus `bson:"_id"`
		Count  int64             `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode status counts: %w", err)
	}

	counts := make(map[entity.NewsStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
