package jobs

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/ridasaidd/byteforge-sub002/internal/logging"
	"github.com/ridasaidd/byteforge-sub002/pkg/interfaces"
)

const rebuildJobName = "stylesheet-rebuild"

var (
	ErrEmptyJobName  = errors.New("jobs: job name is required")
	ErrEmptyCronExpr = errors.New("jobs: cron expression is required")
	ErrNilTask       = errors.New("jobs: task is required")
)

// Scheduler wraps a gocron scheduler. Job panics are recovered and logged.
type Scheduler struct {
	scheduler gocron.Scheduler
	logger    interfaces.Logger
	stopOnce  sync.Once
	stopErr   error
}

func NewScheduler(logger interfaces.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.NoOp()
	}
	sched, err := gocron.NewScheduler(
		gocron.WithGlobalJobOptions(
			gocron.WithEventListeners(
				gocron.AfterJobRunsWithPanic(func(jobID uuid.UUID, jobName string, recoverData any) {
					logger.Error("job.panicked", "job_id", jobID.String(), "job_name", jobName, "panic", recoverData)
				}),
			),
		),
	)
	if err != nil {
		return nil, err
	}
	return &Scheduler{scheduler: sched, logger: logger}, nil
}

// AddJob registers a cron job. Overlapping runs of the same job wait for the
// previous one.
func (s *Scheduler) AddJob(name, cronExpr string, task func()) (gocron.Job, error) {
	name = strings.TrimSpace(name)
	cronExpr = strings.TrimSpace(cronExpr)
	if name == "" {
		return nil, ErrEmptyJobName
	}
	if cronExpr == "" {
		return nil, ErrEmptyCronExpr
	}
	if task == nil {
		return nil, ErrNilTask
	}
	job, err := s.scheduler.NewJob(
		gocron.CronJob(cronExpr, false),
		gocron.NewTask(task),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeWait),
	)
	if err != nil {
		return nil, err
	}
	s.logger.Info("job.registered", "job_name", name, "cron", cronExpr)
	return job, nil
}

// ScheduleRebuild runs worker.Process on cronExpr.
func (s *Scheduler) ScheduleRebuild(cronExpr string, worker *Worker) (gocron.Job, error) {
	if worker == nil {
		return nil, ErrWorkerMisconfigured
	}
	return s.AddJob(rebuildJobName, cronExpr, func() {
		if err := worker.Process(context.Background()); err != nil {
			s.logger.Error("rebuild.run_failed", "error", err)
		}
	})
}

// Jobs returns the registered jobs.
func (s *Scheduler) Jobs() []gocron.Job {
	return s.scheduler.Jobs()
}

func (s *Scheduler) Start() {
	s.logger.Info("scheduler.starting")
	s.scheduler.Start()
}

// Stop shuts the scheduler down once; later calls return the first result.
func (s *Scheduler) Stop() error {
	s.stopOnce.Do(func() {
		s.logger.Info("scheduler.stopping")
		s.stopErr = s.scheduler.Shutdown()
	})
	return s.stopErr
}
