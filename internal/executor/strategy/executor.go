package strategy

import (
	"context"

	"golang-market-intel/internal/entity"
)

// JobExecutionStrategy defines the interface for the pipeline stages the executor can run.
type JobExecutionStrategy interface {
	Execute(ctx context.Context, job *entity.Job) (string, error)
	GetType() entity.JobType
}
