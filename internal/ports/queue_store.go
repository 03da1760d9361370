package ports

import (
	"context"

	"github.com/arcbank/offlinegate/internal/domain"
)

// QueueStore persists queued mutations across process restarts, giving them
// at-least-once eventual delivery across connectivity gaps.
//
// The entry timestamp is the primary key. Implementations must persist
// synchronously before Enqueue returns, and ListAll must yield entries in
// insertion order (oldest first).
type QueueStore interface {
	// Enqueue stores the snapshot durably. Two enqueues with the same
	// timestamp collide last-write-wins.
	Enqueue(ctx context.Context, req domain.QueuedRequest) error

	// ListAll returns every queued entry, oldest first.
	ListAll(ctx context.Context) ([]domain.QueuedRequest, error)

	// Remove deletes the entry with the given timestamp key.
	// Removing a missing key is not an error.
	Remove(ctx context.Context, key int64) error

	// Clear deletes every queued entry.
	Clear(ctx context.Context) error
}
