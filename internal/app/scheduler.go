package app

import (
	"context"

	"github.com/robfig/cron/v3"

	"github.com/arcbank/offlinegate/internal/ports"
)

// Scheduler periodically probes the queue and triggers a replay pass when
// entries are waiting. It stands in for a platform-level background-sync
// registration: connectivity restoration is discovered by simply trying.
type Scheduler struct {
	schedule string
	coord    *Coordinator
	queue    ports.QueueStore
	logger   ports.Logger
	cron     *cron.Cron
}

// NewScheduler creates a scheduler with a cron-style spec, e.g. "@every 30s".
func NewScheduler(schedule string, coord *Coordinator, queue ports.QueueStore, logger ports.Logger) *Scheduler {
	return &Scheduler{
		schedule: schedule,
		coord:    coord,
		queue:    queue,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start registers the probe job and starts the cron runner.
func (s *Scheduler) Start() error {
	if s.schedule == "" {
		s.logger.Info("sync scheduler disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.schedule, s.probe); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("sync scheduler started", ports.String("schedule", s.schedule))
	return nil
}

// Stop stops the cron runner. Already-running jobs finish.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

func (s *Scheduler) probe() {
	if s.coord.State() == SyncReplaying {
		return
	}
	entries, err := s.queue.ListAll(context.Background())
	if err != nil {
		s.logger.Error("sync probe failed", ports.Err(err))
		return
	}
	if len(entries) > 0 {
		s.coord.Trigger()
	}
}
