package app

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/arcbank/offlinegate/internal/domain"
	"github.com/arcbank/offlinegate/internal/ports"
)

// SyncState is the coordinator's replay state.
type SyncState int32

const (
	SyncIdle SyncState = iota
	SyncReplaying
)

// String returns a human-readable representation of the state.
func (s SyncState) String() string {
	if s == SyncReplaying {
		return "Replaying"
	}
	return "Idle"
}

// Coordinator drains the durable queue when connectivity plausibly returns.
//
// Replay is sequential, one request in flight at a time, to bound memory and
// avoid overwhelming a just-recovered network path. A per-item failure never
// aborts the batch: the entry simply stays queued for the next trigger.
// There is no backoff, dedup, or retry cap; every trigger retries the full
// queue.
type Coordinator struct {
	queue    ports.QueueStore
	upstream ports.Upstream
	notifier ports.Notifier
	logger   ports.Logger

	state   atomic.Int32
	trigger chan struct{}
}

// NewCoordinator creates a sync coordinator.
func NewCoordinator(queue ports.QueueStore, upstream ports.Upstream, notifier ports.Notifier, logger ports.Logger) *Coordinator {
	return &Coordinator{
		queue:    queue,
		upstream: upstream,
		notifier: notifier,
		logger:   logger,
		trigger:  make(chan struct{}, 1),
	}
}

// Trigger requests a replay pass. Non-blocking; coalesces with a pass that
// is already pending.
func (c *Coordinator) Trigger() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// State returns the current replay state.
func (c *Coordinator) State() SyncState {
	return SyncState(c.state.Load())
}

// Run processes triggers until the context is canceled.
func (c *Coordinator) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.trigger:
			c.Replay(ctx)
		}
	}
}

// Replay drains the queue once: every entry is read in store order (oldest
// first), reissued, and removed on confirmed success with a notification to
// all subscribed pages. Failed entries stay queued.
func (c *Coordinator) Replay(ctx context.Context) []domain.SyncOutcome {
	c.state.Store(int32(SyncReplaying))
	defer c.state.Store(int32(SyncIdle))

	entries, err := c.queue.ListAll(ctx)
	if err != nil {
		c.logger.Error("queue read failed", ports.Err(err))
		return nil
	}
	if len(entries) == 0 {
		return nil
	}

	c.logger.Info("replaying queued mutations", ports.Int("count", len(entries)))

	outcomes := make([]domain.SyncOutcome, 0, len(entries))
	for _, entry := range entries {
		if ctx.Err() != nil {
			break
		}

		outcome := domain.SyncOutcome{
			Key:         entry.Timestamp,
			URL:         entry.URL,
			RespondedAt: time.Now(),
		}

		if _, rerr := c.upstream.Replay(ctx, entry); rerr != nil {
			c.logger.Warn("replay failed, entry stays queued",
				ports.String("url", entry.URL),
				ports.Int64("timestamp", entry.Timestamp),
				ports.Err(rerr),
			)
			outcomes = append(outcomes, outcome)
			continue
		}

		if derr := c.queue.Remove(ctx, entry.Timestamp); derr != nil {
			// The mutation reached the server but the entry could not be
			// removed; it will replay again, which at-least-once allows.
			c.logger.Error("queue remove failed", ports.Err(derr))
		}
		outcome.Succeeded = true
		outcomes = append(outcomes, outcome)

		c.notifier.Broadcast(domain.NoticeFor(outcome))
		c.logger.Info("mutation replayed",
			ports.String("url", entry.URL),
			ports.Int64("timestamp", entry.Timestamp),
		)
	}
	return outcomes
}
