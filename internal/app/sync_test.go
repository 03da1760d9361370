package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/arcbank/offlinegate/internal/domain"
	"github.com/arcbank/offlinegate/pkg/log"
)

func queuedEntry(ts int64, url string) domain.QueuedRequest {
	return domain.QueuedRequest{
		Timestamp: ts,
		URL:       url,
		Method:    http.MethodPost,
		Body:      `{"amount":100}`,
	}
}

func TestReplayRemovesAndNotifiesOnSuccess(t *testing.T) {
	queue := &fakeQueue{}
	upstream := newFakeUpstream()
	notifier := &fakeNotifier{}
	coord := NewCoordinator(queue, upstream, notifier, log.NewNoopLogger())

	ctx := context.Background()
	if err := queue.Enqueue(ctx, queuedEntry(1, "/api/transfer")); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	outcomes := coord.Replay(ctx)
	if len(outcomes) != 1 || !outcomes[0].Succeeded {
		t.Fatalf("outcomes = %+v, want one success", outcomes)
	}

	if entries, _ := queue.ListAll(ctx); len(entries) != 0 {
		t.Errorf("queue has %d entries after successful replay, want 0", len(entries))
	}

	notices := notifier.all()
	if len(notices) != 1 {
		t.Fatalf("got %d notices, want 1", len(notices))
	}
	n := notices[0]
	if n.Type != domain.NoticeSyncSuccess {
		t.Errorf("notice type = %q, want %q", n.Type, domain.NoticeSyncSuccess)
	}
	if n.URL != "/api/transfer" {
		t.Errorf("notice url = %q", n.URL)
	}
	if n.Timestamp == 0 {
		t.Error("notice timestamp not set")
	}
}

func TestReplayKeepsEntryOnFailure(t *testing.T) {
	queue := &fakeQueue{}
	upstream := newFakeUpstream()
	upstream.setDown(true)
	notifier := &fakeNotifier{}
	coord := NewCoordinator(queue, upstream, notifier, log.NewNoopLogger())

	ctx := context.Background()
	if err := queue.Enqueue(ctx, queuedEntry(1, "/api/transfer")); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	outcomes := coord.Replay(ctx)
	if len(outcomes) != 1 || outcomes[0].Succeeded {
		t.Fatalf("outcomes = %+v, want one failure", outcomes)
	}

	if entries, _ := queue.ListAll(ctx); len(entries) != 1 {
		t.Errorf("queue has %d entries after failed replay, want 1", len(entries))
	}
	if len(notifier.all()) != 0 {
		t.Error("failure must not broadcast a notice")
	}
}

func TestReplayFailureDoesNotAbortBatch(t *testing.T) {
	queue := &fakeQueue{}
	upstream := newFakeUpstream()
	upstream.failURLs["/api/transfer-bad"] = true
	notifier := &fakeNotifier{}
	coord := NewCoordinator(queue, upstream, notifier, log.NewNoopLogger())

	ctx := context.Background()
	for i, url := range []string{"/api/transfer-bad", "/api/transfer-ok", "/api/payees"} {
		if err := queue.Enqueue(ctx, queuedEntry(int64(i+1), url)); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	outcomes := coord.Replay(ctx)
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	if outcomes[0].Succeeded {
		t.Error("first entry should have failed")
	}
	if !outcomes[1].Succeeded || !outcomes[2].Succeeded {
		t.Error("entries after a failure should still replay")
	}

	entries, _ := queue.ListAll(ctx)
	if len(entries) != 1 || entries[0].URL != "/api/transfer-bad" {
		t.Errorf("queue = %+v, want only the failed entry", entries)
	}
	if len(notifier.all()) != 2 {
		t.Errorf("got %d notices, want 2", len(notifier.all()))
	}
}

func TestReplayRejectsNonSuccessStatus(t *testing.T) {
	queue := &fakeQueue{}
	upstream := newFakeUpstream()
	upstream.respond(http.MethodPost, "/api/transfer", &domain.Response{
		Status: http.StatusBadRequest,
		Body:   []byte(`{"error":"insufficient funds"}`),
	})
	notifier := &fakeNotifier{}
	coord := NewCoordinator(queue, upstream, notifier, log.NewNoopLogger())

	ctx := context.Background()
	if err := queue.Enqueue(ctx, queuedEntry(1, "/api/transfer")); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	outcomes := coord.Replay(ctx)
	if len(outcomes) != 1 || outcomes[0].Succeeded {
		t.Fatalf("outcomes = %+v, want one failure for a 4xx replay", outcomes)
	}
	if entries, _ := queue.ListAll(ctx); len(entries) != 1 {
		t.Error("a rejected replay must leave the entry queued")
	}
}

func TestReplayEmptyQueueIsNoop(t *testing.T) {
	queue := &fakeQueue{}
	upstream := newFakeUpstream()
	notifier := &fakeNotifier{}
	coord := NewCoordinator(queue, upstream, notifier, log.NewNoopLogger())

	if outcomes := coord.Replay(context.Background()); outcomes != nil {
		t.Errorf("outcomes = %+v, want nil for empty queue", outcomes)
	}
	if coord.State() != SyncIdle {
		t.Errorf("state = %v, want Idle after replay", coord.State())
	}
}

func TestRunProcessesTriggers(t *testing.T) {
	queue := &fakeQueue{}
	upstream := newFakeUpstream()
	notifier := &fakeNotifier{}
	coord := NewCoordinator(queue, upstream, notifier, log.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := queue.Enqueue(ctx, queuedEntry(1, "/api/transfer")); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	coord.Trigger()

	deadline := time.After(2 * time.Second)
	for {
		entries, _ := queue.ListAll(ctx)
		if len(entries) == 0 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("queue not drained after trigger")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}
}

func TestTriggerCoalesces(t *testing.T) {
	coord := NewCoordinator(&fakeQueue{}, newFakeUpstream(), &fakeNotifier{}, log.NewNoopLogger())

	// With no consumer running, repeated triggers must not block.
	for i := 0; i < 5; i++ {
		coord.Trigger()
	}
	if len(coord.trigger) != 1 {
		t.Errorf("trigger buffer holds %d, want 1", len(coord.trigger))
	}
}

func TestSchedulerProbeTriggersWhenQueueNonEmpty(t *testing.T) {
	queue := &fakeQueue{}
	upstream := newFakeUpstream()
	coord := NewCoordinator(queue, upstream, &fakeNotifier{}, log.NewNoopLogger())
	sched := NewScheduler("@every 1h", coord, queue, log.NewNoopLogger())

	sched.probe()
	if len(coord.trigger) != 0 {
		t.Error("probe triggered on an empty queue")
	}

	if err := queue.Enqueue(context.Background(), queuedEntry(1, "/api/transfer")); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	sched.probe()
	if len(coord.trigger) != 1 {
		t.Error("probe did not trigger on a non-empty queue")
	}
}

func TestSchedulerEmptyScheduleDisabled(t *testing.T) {
	coord := NewCoordinator(&fakeQueue{}, newFakeUpstream(), &fakeNotifier{}, log.NewNoopLogger())
	sched := NewScheduler("", coord, &fakeQueue{}, log.NewNoopLogger())

	if err := sched.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	sched.Stop()
}
