// Package scheduler runs configured scenarios on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/choice-sim/internal/service"
	"github.com/yourusername/choice-sim/internal/tracing"
)

// Scheduler manages periodic scenario runs
type Scheduler struct {
	cron       *cron.Cron
	simulation *service.SimulationService
	logger     *logrus.Logger
	mu         sync.RWMutex
	isRunning  bool
	traced     bool
	jobIDs     []cron.EntryID
	runTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(simulation *service.SimulationService, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		simulation: simulation,
		logger:     logger,
		jobIDs:     make([]cron.EntryID, 0),
		runTimeout: 10 * time.Minute,
	}
}

// EnableTracing wraps every scheduled run in an X-Ray segment.
func (s *Scheduler) EnableTracing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.traced = true
}

// ScheduleScenarios schedules the named scenarios on the given cron
// expression. Each tick runs them sequentially.
func (s *Scheduler) ScheduleScenarios(cronExpression string, scenarios []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if len(scenarios) == 0 {
		return fmt.Errorf("no scenarios to schedule")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
		defer cancel()

		for _, name := range scenarios {
			s.runOne(ctx, name)
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":      cronExpression,
		"scenarios": scenarios,
	}).Info("Scheduled scenario job")

	return nil
}

func (s *Scheduler) runOne(ctx context.Context, name string) {
	if s.traced {
		var seg *xray.Segment
		ctx, seg = tracing.StartSegment(ctx, "scheduled-run")
		tracing.AddAnnotation(ctx, "scenario", name)
		defer seg.Close(nil)
	}

	result, err := s.simulation.RunScenario(ctx, name)
	if err != nil {
		tracing.AddError(ctx, err)
		s.logger.WithError(err).WithField("scenario", name).Error("Scheduled run failed")
		return
	}
	s.logger.WithFields(logrus.Fields{
		"scenario":     name,
		"observations": result.Table.Observations(),
		"cached":       result.Cached,
	}).Info("Scheduled run completed")
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}
	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	<-s.cron.Stop().Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns the time of the next scheduled run
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}
