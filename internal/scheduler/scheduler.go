// Package scheduler runs periodic jobs on a cron clock.
package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"billnudge/internal/logger"
)

// Scheduler wraps a cron instance with second precision.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a scheduler evaluating specs in loc. Overlapping runs of the
// same job are skipped.
func New(loc *time.Location) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
	}
}

// Every registers job to run at a fixed interval.
func (s *Scheduler) Every(interval time.Duration, name string, job func()) (cron.EntryID, error) {
	spec, err := intervalSpec(interval)
	if err != nil {
		return 0, err
	}
	id, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return 0, fmt.Errorf("schedule %s: %w", name, err)
	}
	logger.Named("scheduler").Infow("job scheduled", "job", name, "spec", spec)
	return id, nil
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Entries returns the number of registered jobs.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func intervalSpec(interval time.Duration) (string, error) {
	if interval <= 0 {
		return "", fmt.Errorf("interval must be positive")
	}
	seconds := int(interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return fmt.Sprintf("@every %ds", seconds), nil
}
