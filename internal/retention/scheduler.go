// Package retention prunes old log entries on a cron schedule.
package retention

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/modelhub-io/go-modelapi-backend/internal/logging"
)

// Pruner deletes rows reported before the cutoff and returns how many.
type Pruner interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type Scheduler struct {
	pruner   Pruner
	schedule string
	days     int
	cron     *cron.Cron
}

// NewScheduler builds a scheduler that keeps the most recent `days` days of
// entries. The schedule uses six-field cron syntax (with seconds).
func NewScheduler(pruner Pruner, schedule string, days int) *Scheduler {
	return &Scheduler{
		pruner:   pruner,
		schedule: schedule,
		days:     days,
	}
}

func (s *Scheduler) Start() error {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(s.schedule, func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}

	logging.Log.Info("retention scheduler started",
		zap.String("schedule", s.schedule),
		zap.Int("days", s.days))
	c.Start()
	s.cron = c
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// RunOnce performs a single prune pass. Exposed so the worker binary can run
// it immediately on demand.
func (s *Scheduler) RunOnce(ctx context.Context) {
	if s.days <= 0 {
		return
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -s.days)
	n, err := s.pruner.PruneOlderThan(ctx, cutoff)
	if err != nil {
		logging.Log.Error("retention prune failed", zap.Error(err))
		return
	}
	logging.Log.Info("retention prune completed",
		zap.Int64("deleted", n),
		zap.Time("cutoff", cutoff))
}
