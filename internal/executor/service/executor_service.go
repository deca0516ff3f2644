package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-market-intel/internal/entity"
	"golang-market-intel/internal/executor/repository"
	"golang-market-intel/internal/executor/strategy"
	"golang-market-intel/pkg/logger"
	"golang-market-intel/pkg/telegram"
	"golang-market-intel/pkg/utils"

	"gorm.io/datatypes"
)

// ErrUnknownJobType is returned when no strategy is registered for a job type.
var ErrUnknownJobType = errors.New("no executor strategy found for job type")

// RunLocker grants exclusive runs per job type.
type RunLocker interface {
	TryLock(ctx context.Context, name string, ttl time.Duration) (unlock func(context.Context) error, ok bool, err error)
}

type nopLocker struct{}

// NewNopLocker returns a RunLocker that always grants the lock. Used when Redis is disabled.
func NewNopLocker() RunLocker {
	return nopLocker{}
}

func (nopLocker) TryLock(context.Context, string, time.Duration) (func(context.Context) error, bool, error) {
	return func(context.Context) error { return nil }, true, nil
}

// ExecutorService runs pipeline jobs.
type ExecutorService interface {
	Run(ctx context.Context, job *entity.Job) (*entity.RunHistory, error)
}

// ExecutorOptions bounds every run.
type ExecutorOptions struct {
	RunTimeout time.Duration
	LockTTL    time.Duration
}

// NewExecutorService creates a new ExecutorService.
func NewExecutorService(
	historyRepo repository.RunHistoryRepository,
	locker RunLocker,
	notifier telegram.Notifier,
	log *logger.Logger,
	opts ExecutorOptions,
	strategies []strategy.JobExecutionStrategy,
) ExecutorService {
	strategyMap := make(map[entity.JobType]strategy.JobExecutionStrategy)
	for _, s := range strategies {
		strategyMap[s.GetType()] = s
	}
	if locker == nil {
		locker = NewNopLocker()
	}
	if notifier == nil {
		notifier = telegram.NewNopNotifier()
	}

	return &executorService{
		historyRepo:        historyRepo,
		locker:             locker,
		notifier:           notifier,
		logger:             log,
		opts:               opts,
		executorStrategies: strategyMap,
		now:                utils.TimeNowUTC,
	}
}

type executorService struct {
	historyRepo        repository.RunHistoryRepository
	locker             RunLocker
	notifier           telegram.Notifier
	logger             *logger.Logger
	opts               ExecutorOptions
	executorStrategies map[entity.JobType]strategy.JobExecutionStrategy
	now                func() time.Time
}

// Run executes job once. The returned history reflects the final state of the
// run; the error is the strategy's or the lock's, if any.
func (s *executorService) Run(ctx context.Context, job *entity.Job) (*entity.RunHistory, error) {
	strategy, ok := s.executorStrategies[job.Type]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, job.Type)
	}

	history := &entity.RunHistory{
		JobType:   job.Type,
		Status:    entity.RunStatusRunning,
		StartedAt: s.now(),
	}

	unlock, acquired, err := s.locker.TryLock(ctx, string(job.Type), s.opts.LockTTL)
	if err != nil {
		s.logger.Error("Failed to acquire run lock", logger.ErrorField(err), logger.StringField("job_type", string(job.Type)))
		return nil, err
	}
	if !acquired {
		s.logger.Warn("Another run holds the lock, skipping", logger.StringField("job_type", string(job.Type)))
		history.Status = entity.RunStatusSkipped
		history.ErrorMessage = "another run of this job is in progress"
		s.complete(ctx, history)
		return history, nil
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error("Failed to release run lock", logger.ErrorField(err), logger.StringField("job_type", string(job.Type)))
		}
	}()

	if err := s.historyRepo.Create(ctx, history); err != nil {
		s.logger.Error("Failed to create run history", logger.ErrorField(err), logger.StringField("job_type", string(job.Type)))
	}

	s.logger.Info("Processing job", logger.StringField("job_type", string(job.Type)), logger.StringField("history_id", history.ID))

	execCtx := ctx
	if s.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, s.opts.RunTimeout)
		defer cancel()
	}

	output, runErr := strategy.Execute(execCtx, job)
	if output != "" {
		history.Output = datatypes.JSON(output)
	}
	if runErr != nil {
		s.logger.Error("Job execution failed", logger.ErrorField(runErr), logger.StringField("job_type", string(job.Type)), logger.StringField("history_id", history.ID))
		history.Status = entity.RunStatusFailed
		history.ErrorMessage = runErr.Error()
	} else {
		s.logger.Info("Job executed successfully", logger.StringField("job_type", string(job.Type)), logger.StringField("history_id", history.ID))
		history.Status = entity.RunStatusCompleted
	}

	s.complete(ctx, history)
	return history, runErr
}

// complete stamps the history, stores it and sends the summary. Both side
// effects are best-effort.
func (s *executorService) complete(ctx context.Context, history *entity.RunHistory) {
	completedAt := s.now()
	history.CompletedAt = &completedAt

	storeCtx := context.WithoutCancel(ctx)
	var err error
	if history.ID != "" {
		err = s.historyRepo.Update(storeCtx, history)
	} else {
		err = s.historyRepo.Create(storeCtx, history)
	}
	if err != nil {
		s.logger.Error("Failed to store run history", logger.ErrorField(err), logger.StringField("job_type", string(history.JobType)))
	}

	if err := s.notifier.SendMessage(telegram.FormatRunSummaryForTelegram(history)); err != nil {
		s.logger.Warn("Failed to send run summary", logger.ErrorField(err))
	}

	s.logger.Info("Job execution completed",
		logger.StringField("job_type", string(history.JobType)),
		logger.StringField("status", string(history.Status)),
		logger.DurationField("duration", completedAt.Sub(history.StartedAt)),
	)
}
