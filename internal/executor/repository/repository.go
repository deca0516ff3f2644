package repository

import (
	"context"
	"errors"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/executor/dto"
)

var (
	// ErrNotFound is returned when a lookup by id matches nothing.
	ErrNotFound = errors.New("record not found")
	// ErrNotPending is returned when a status update targets an item that is no longer pending enrichment.
	ErrNotPending = errors.New("news item is not pending enrichment")
)

// AnalysisRepository sends a news item to a text-analysis model.
type AnalysisRepository interface {
	AnalyzeNews(ctx context.Context, title, summary string) (*dto.NewsAnalysisResult, error)
}

// NewsItemFilter narrows List queries. Zero values mean "any".
type NewsItemFilter struct {
	Status   entity.NewsStatus
	Category entity.Category
	Limit    int
	Offset   int
}

// NewsItemRepository defines the store operations on archived news items.
type NewsItemRepository interface {
	ExistsByURL(ctx context.Context, url string) (bool, error)
	// CreateIgnoreConflict inserts item and reports false when its URL already exists.
	CreateIgnoreConflict(ctx context.Context, item *entity.NewsItem) (bool, error)
	FindByStatus(ctx context.Context, status entity.NewsStatus, limit int) ([]entity.NewsItem, error)
	MarkEnriched(ctx context.Context, id string, sentiment float64, insight string) error
	MarkFailed(ctx context.Context, id string, reason string) error
	FindByID(ctx context.Context, id string) (*entity.NewsItem, error)
	List(ctx context.Context, filter NewsItemFilter) ([]entity.NewsItem, int64, error)
	CountByStatus(ctx context.Context) (map[entity.NewsStatus]int64, error)
}

// RunHistoryRepository defines the store operations on job run records.
type RunHistoryRepository interface {
	Create(ctx context.Context, history *entity.RunHistory) error
	Update(ctx context.Context, history *entity.RunHistory) error
	FindByID(ctx context.Context, id string) (*entity.RunHistory, error)
	FindRecent(ctx context.Context, limit int) ([]entity.RunHistory, error)
}
