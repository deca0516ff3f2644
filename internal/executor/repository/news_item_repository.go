package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-market-intel/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewNewsItemRepository creates a gorm-backed NewsItemRepository.
func NewNewsItemRepository(db *gorm.DB) NewsItemRepository {
	return &newsItemRepository{db: db}
}

type newsItemRepository struct {
	db *gorm.DB
}

// ExistsByURL reports whether an item with exactly this URL is archived.
func (r *newsItemRepository) ExistsByURL(ctx context.Context, url string) (bool, error) {
	var exists bool
	err := r.db.WithContext(ctx).
		Raw("SELECT EXISTS (SELECT 1 FROM market_news WHERE url = ?)", url).
		Scan(&exists).Error
	if err != nil {
		return false, fmt.Errorf("failed to check news url: %w", err)
	}
	return exists, nil
}

// CreateIgnoreConflict inserts the item; the unique index on url turns a racing duplicate into a no-op.
func (r *newsItemRepository) CreateIgnoreConflict(ctx context.Context, item *entity.NewsItem) (bool, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.Status == "" {
		item.Status = entity.StatusPendingEnrichment
	}

	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(item)
	if tx.Error != nil {
		return false, fmt.Errorf("failed to insert news item: %w", tx.Error)
	}
	return tx.RowsAffected > 0, nil
}

// FindByStatus returns up to limit items with the given status, oldest first.
func (r *newsItemRepository) FindByStatus(ctx context.Context, status entity.NewsStatus, limit int) ([]entity.NewsItem, error) {
	var items []entity.NewsItem
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at asc").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find news by status: %w", err)
	}
	return items, nil
}

func (r *newsItemRepository) MarkEnriched(ctx context.Context, id string, sentiment float64, insight string) error {
	return r.transition(ctx, id, entity.StatusEnriched, map[string]interface{}{
		"sentiment_score":  sentiment,
		"ai_summary":       insight,
		"enrichment_error": "",
	})
}

func (r *newsItemRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	return r.transition(ctx, id, entity.StatusFailed, map[string]interface{}{
		"enrichment_error": reason,
	})
}

// transition applies updates only while the row is still pending, so a terminal status is never overwritten.
func (r *newsItemRepository) transition(ctx context.Context, id string, next entity.NewsStatus, updates map[string]interface{}) error {
	if !entity.StatusPendingEnrichment.CanTransitionTo(next) {
		return fmt.Errorf("illegal status transition to %s", next)
	}
	updates["status"] = next
	updates["updated_at"] = time.Now().UTC()

	tx := r.db.WithContext(ctx).
		Model(&entity.NewsItem{}).
		Where("id = ? AND status = ?", id, entity.StatusPendingEnrichment).
		Updates(updates)
	if tx.Error != nil {
		return fmt.Errorf("failed to mark news item %s as %s: %w", id, next, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

func (r *newsItemRepository) FindByID(ctx context.Context, id string) (*entity.NewsItem, error) {
	var item entity.NewsItem
	if err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// List returns a page of items, newest publication first, plus the total match count.
func (r *newsItemRepository) List(ctx context.Context, filter NewsItemFilter) ([]entity.NewsItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.NewsItem{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count news: %w", err)
	}

	var items []entity.NewsItem
	err := query.Order("published_at desc").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&items).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list news: %w", err)
	}
	return items, total, nil
}

func (r *newsItemRepository) CountByStatus(ctx context.Context) (map[entity.NewsStatus]int64, error) {
	var rows []struct {
		Status entity.NewsStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&entity.NewsItem{}).
		Select("status, count(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count news by status: %w", err)
	}

	counts := make(map[entity.NewsStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
