package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"golang-market-intel/internal/api/dto"
	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/executor/repository"
	"golang-market-intel/pkg/logger"
)

// RunService defines the read operations on job runs.
type RunService interface {
	GetRecentRuns(ctx context.Context, limit int) ([]dto.RunResponse, error)
	GetRunByID(ctx context.Context, id string) (*dto.RunResponse, error)
}

// NewRunService creates a new run service.
func NewRunService(runRepo repository.RunHistoryRepository, logger *logger.Logger) RunService {
	return &runService{runRepo: runRepo, logger: logger}
}

type runService struct {
	runRepo repository.RunHistoryRepository
	logger  *logger.Logger
}

// GetRecentRuns returns the latest runs, newest first.
func (s *runService) GetRecentRuns(ctx context.Context, limit int) ([]dto.RunResponse, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", ErrInvalidFilter)
	}
	if limit == 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}

	histories, err := s.runRepo.FindRecent(ctx, limit)
	if err != nil {
		s.logger.Error("Failed to get recent runs", logger.ErrorField(err))
		return nil, err
	}

	runs := make([]dto.RunResponse, 0, len(histories))
	for i := range histories {
		runs = append(runs, mapToRunResponse(&histories[i]))
	}
	return runs, nil
}

// GetRunByID retrieves a run by its ID.
func (s *runService) GetRunByID(ctx context.Context, id string) (*dto.RunResponse, error) {
	history, err := s.runRepo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Error("Failed to find run", logger.ErrorField(err), logger.StringField("id", id))
		}
		return nil, err
	}
	resp := mapToRunResponse(history)
	return &resp, nil
}

func mapToRunResponse(history *entity.RunHistory) dto.RunResponse {
	var duration int64
	if history.CompletedAt != nil {
		duration = history.CompletedAt.Sub(history.StartedAt).Milliseconds()
	}

	resp := dto.RunResponse{
		ID:           history.ID,
		JobType:      string(history.JobType),
		Status:       string(history.Status),
		StartedAt:    history.StartedAt,
		CompletedAt:  history.CompletedAt,
		Duration:     duration,
		ErrorMessage: history.ErrorMessage,
	}
	if len(history.Output) > 0 && json.Valid(history.Output) {
		resp.Output = json.RawMessage(history.Output)
	}
	return resp
}
