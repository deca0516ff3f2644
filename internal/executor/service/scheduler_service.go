package service

import (
	"context"
	"fmt"

	"golang-market-intel/internal/entity"
	"golang-market-intel/pkg/logger"

	"github.com/robfig/cron/v3"
)

// Schedule binds a cron expression to a job type.
type Schedule struct {
	Spec    string
	JobType entity.JobType
}

// SchedulerService triggers jobs on their cron schedules until stopped.
type SchedulerService struct {
	executor ExecutorService
	logger   *logger.Logger
	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewSchedulerService creates a SchedulerService. Runs of the same entry never overlap.
// A panicking run is recovered and logged with its stack.
func NewSchedulerService(executor ExecutorService, log *logger.Logger) *SchedulerService {
	cronLog := newCronLogger(log)
	return &SchedulerService{
		executor: executor,
		logger:   log,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		)),
	}
}

// Register adds every schedule. Entries with an empty spec are disabled.
func (s *SchedulerService) Register(schedules ...Schedule) error {
	for _, sc := range schedules {
		if sc.Spec == "" {
			s.logger.Info("Schedule disabled", logger.StringField("job_type", string(sc.JobType)))
			continue
		}
		jobType := sc.JobType
		if _, err := s.cron.AddFunc(sc.Spec, func() { s.trigger(jobType) }); err != nil {
			return fmt.Errorf("invalid schedule %q for %s: %w", sc.Spec, jobType, err)
		}
		s.logger.Info("Registered schedule", logger.StringField("job_type", string(jobType)), logger.StringField("spec", sc.Spec))
	}
	return nil
}

// Start begins firing registered schedules. Runs inherit ctx.
func (s *SchedulerService) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron.Start()
	s.logger.Info("Scheduler started", logger.IntField("entries", len(s.cron.Entries())))
}

// Stop cancels in-flight runs and waits for them to return.
func (s *SchedulerService) Stop() {
	stopped := s.cron.Stop()
	if s.cancel != nil {
		s.cancel()
	}
	<-stopped.Done()
	s.logger.Info("Scheduler stopped")
}

func (s *SchedulerService) trigger(jobType entity.JobType) {
	if s.ctx == nil || s.ctx.Err() != nil {
		return
	}
	if _, err := s.executor.Run(s.ctx, &entity.Job{Type: jobType}); err != nil {
		s.logger.Error("Scheduled run failed", logger.ErrorField(err), logger.StringField("job_type", string(jobType)))
	}
}
