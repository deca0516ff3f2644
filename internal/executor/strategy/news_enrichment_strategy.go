package strategy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/executor/config"
	"golang-market-intel/internal/executor/dto"
	"golang-market-intel/internal/executor/repository"
	"golang-market-intel/pkg/logger"
	"golang-market-intel/pkg/utils"
)

// NewsEnrichmentPayload optionally overrides the batch size for one run.
type NewsEnrichmentPayload struct {
	BatchSize int `json:"batch_size"`
}

// NewsEnrichmentStrategy sends pending news items to the analysis model and
// moves each one to enriched or failed. Every item gets exactly one attempt.
type NewsEnrichmentStrategy struct {
	cfg      *config.Config
	logger   *logger.Logger
	repo     repository.NewsItemRepository
	analyzer repository.AnalysisRepository
}

// NewNewsEnrichmentStrategy creates a new instance of NewsEnrichmentStrategy.
func NewNewsEnrichmentStrategy(cfg *config.Config, log *logger.Logger, repo repository.NewsItemRepository, analyzer repository.AnalysisRepository) *NewsEnrichmentStrategy {
	return &NewsEnrichmentStrategy{
		cfg:      cfg,
		logger:   log,
		repo:     repo,
		analyzer: analyzer,
	}
}

// GetType returns the job type this strategy handles.
func (s *NewsEnrichmentStrategy) GetType() entity.JobType {
	return entity.JobTypeNewsEnrichment
}

// Execute enriches one batch and returns the JSON report. Only a failure to
// select the batch fails the run; item failures are recorded on the items.
func (s *NewsEnrichmentStrategy) Execute(ctx context.Context, job *entity.Job) (string, error) {
	batchSize := s.cfg.Enrichment.BatchSize
	if job != nil && len(job.Payload) > 0 {
		var payload NewsEnrichmentPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return "", fmt.Errorf("failed to unmarshal job payload: %w", err)
		}
		if payload.BatchSize > 0 {
			batchSize = payload.BatchSize
		}
	}

	report, err := s.Enrich(ctx, batchSize)
	if err != nil {
		return "", err
	}

	resultJSON, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %w", err)
	}
	return string(resultJSON), nil
}

// Enrich processes up to batchSize pending items in selection order.
func (s *NewsEnrichmentStrategy) Enrich(ctx context.Context, batchSize int) (*dto.EnrichmentReport, error) {
	items, err := s.repo.FindByStatus(ctx, entity.StatusPendingEnrichment, batchSize)
	if err != nil {
		s.logger.Error("Failed to select pending news", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to select pending news: %w", err)
	}

	report := &dto.EnrichmentReport{Selected: len(items), Items: []dto.EnrichmentItemResult{}}
	if len(items) == 0 {
		s.logger.Info("No pending news to enrich")
		return report, nil
	}

	s.logger.Info("Enriching pending news", logger.IntField("count", len(items)))

	for i := range items {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		if i > 0 {
			if err := utils.Sleep(ctx, s.cfg.Enrichment.Delay); err != nil {
				break
			}
		}

		result := s.enrichItem(ctx, &items[i])
		switch result.Status {
		case string(entity.StatusEnriched):
			report.Enriched++
		case string(entity.StatusFailed):
			report.Failed++
		default:
			report.Skipped++
		}
		report.Items = append(report.Items, result)
	}

	s.logger.Info("News enrichment completed",
		logger.IntField("selected", report.Selected),
		logger.IntField("enriched", report.Enriched),
		logger.IntField("failed", report.Failed),
		logger.IntField("skipped", report.Skipped),
	)
	return report, nil
}

func (s *NewsEnrichmentStrategy) enrichItem(ctx context.Context, item *entity.NewsItem) dto.EnrichmentItemResult {
	result := dto.EnrichmentItemResult{ID: item.ID, Title: item.Title}

	analysis, err := s.analyze(ctx, item)
	if err != nil {
		s.logger.Warn("Analysis failed, marking news as failed", logger.ErrorField(err), logger.StringField("id", item.ID))
		result.Error = err.Error()
		return s.finish(result, entity.StatusFailed, s.repo.MarkFailed(ctx, item.ID, err.Error()))
	}

	result.Sentiment = analysis.Sentiment
	s.logger.Info("Enriched news item",
		logger.StringField("id", item.ID),
		logger.Float64Field("sentiment", analysis.Sentiment),
	)
	return s.finish(result, entity.StatusEnriched, s.repo.MarkEnriched(ctx, item.ID, analysis.Sentiment, analysis.Insight))
}

func (s *NewsEnrichmentStrategy) analyze(ctx context.Context, item *entity.NewsItem) (*dto.NewsAnalysisResult, error) {
	callCtx := ctx
	if timeout := s.cfg.AI.RequestTimeout; timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	analysis, err := s.analyzer.AnalyzeNews(callCtx, item.Title, item.Summary)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, fmt.Errorf("analysis returned no result")
	}
	return analysis, nil
}

// finish turns the outcome of the status update into the item result.
func (s *NewsEnrichmentStrategy) finish(result dto.EnrichmentItemResult, status entity.NewsStatus, updateErr error) dto.EnrichmentItemResult {
	switch {
	case updateErr == nil:
		result.Status = string(status)
	case errors.Is(updateErr, repository.ErrNotPending):
		s.logger.Info("News item no longer pending, skipping", logger.StringField("id", result.ID))
		result.Status = dto.SKIPPED
	default:
		s.logger.Error("Failed to update news status", logger.ErrorField(updateErr), logger.StringField("id", result.ID))
		result.Status = dto.SKIPPED
		if result.Error == "" {
			result.Error = updateErr.Error()
		}
	}
	return result
}
