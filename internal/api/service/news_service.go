package service

import (
	"context"
	"errors"
	"fmt"

	"golang-market-intel/internal/api/dto"
	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/executor/repository"
	"golang-market-intel/pkg/logger"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// ErrInvalidFilter is returned for query parameters outside their allowed values.
var ErrInvalidFilter = errors.New("invalid filter")

// NewsService defines the read operations on archived news.
type NewsService interface {
	ListNews(ctx context.Context, req dto.NewsListRequest) (*dto.NewsListResponse, error)
	GetNewsByID(ctx context.Context, id string) (*dto.NewsResponse, error)
	GetStats(ctx context.Context) (*dto.NewsStatsResponse, error)
}

// NewNewsService creates a new news service.
func NewNewsService(newsRepo repository.NewsItemRepository, logger *logger.Logger) NewsService {
	return &newsService{newsRepo: newsRepo, logger: logger}
}

type newsService struct {
	newsRepo repository.NewsItemRepository
	logger   *logger.Logger
}

// ListNews returns one page of news, newest first.
func (s *newsService) ListNews(ctx context.Context, req dto.NewsListRequest) (*dto.NewsListResponse, error) {
	filter := repository.NewsItemFilter{
		Status:   entity.NewsStatus(req.Status),
		Category: entity.Category(req.Category),
		Limit:    req.Limit,
		Offset:   req.Offset,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidFilter, req.Status)
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidFilter, req.Category)
	}
	if filter.Limit < 0 || filter.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", ErrInvalidFilter)
	}
	if filter.Limit == 0 {
		filter.Limit = DefaultPageLimit
	}
	if filter.Limit > MaxPageLimit {
		filter.Limit = MaxPageLimit
	}

	items, total, err := s.newsRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list news", logger.ErrorField(err))
		return nil, err
	}

	resp := &dto.NewsListResponse{
		Items:  make([]dto.NewsResponse, 0, len(items)),
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}
	for i := range items {
		resp.Items = append(resp.Items, mapToNewsResponse(&items[i]))
	}
	return resp, nil
}

// GetNewsByID retrieves a news item by its ID.
func (s *newsService) GetNewsByID(ctx context.Context, id string) (*dto.NewsResponse, error) {
	item, err := s.newsRepo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Failed to find news", logger.ErrorField(err), logger.StringField("id", id))
		}
		return nil, err
	}
	resp := mapToNewsResponse(item)
	return &resp, nil
}

// GetStats counts news items per status.
func (s *newsService) GetStats(ctx context.Context) (*dto.NewsStatsResponse, error) {
	counts, err := s.newsRepo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to count news", logger.ErrorField(err))
		return nil, err
	}

	stats := &dto.NewsStatsResponse{
		PendingEnrichment: counts[entity.StatusPendingEnrichment],
		Enriched:          counts[entity.StatusEnriched],
		Failed:            counts[entity.StatusFailed],
	}
	for _, n := range counts {
		stats.Total += n
	}
	return stats, nil
}

func mapToNewsResponse(item *entity.NewsItem) dto.NewsResponse {
	resp := dto.NewsResponse{
		ID:              item.ID,
		Title:           item.Title,
		URL:             item.URL,
		Summary:         item.Summary,
		Source:          item.Source,
		PublishedAt:     item.PublishedAt,
		Category:        string(item.Category),
		Status:          string(item.Status),
		MatchedSignals:  []string(item.MatchedSignals),
		EnrichmentError: item.EnrichmentError,
		CreatedAt:       item.CreatedAt,
	}
	if resp.MatchedSignals == nil {
		resp.MatchedSignals = []string{}
	}
	// sentiment and insight only mean something once enriched
	if item.Status == entity.StatusEnriched {
		score := item.SentimentScore
		resp.SentimentScore = &score
		resp.Insight = item.AISummary
	}
	return resp
}
