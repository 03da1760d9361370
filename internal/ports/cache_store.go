package ports

import (
	"context"

	"github.com/arcbank/offlinegate/internal/domain"
)

// CacheStore owns the named cache partitions. Keys are request URLs
// (path plus query); values are fully-read responses.
//
// Lookups return domain.ErrCacheMiss when no entry exists; that is a
// control-flow branch for the strategies, not a failure.
type CacheStore interface {
	// EnsurePartition creates the partition if it does not exist.
	EnsurePartition(ctx context.Context, name string) error

	// EvictNotIn deletes every partition whose name is not in keep and
	// returns the names it removed. It must complete before the gateway
	// serves any request from the new version (activation barrier).
	EvictNotIn(ctx context.Context, keep []string) ([]string, error)

	// Put stores a response under key in the named partition.
	// Re-storing an existing key overwrites it; that is harmless.
	Put(ctx context.Context, partition, key string, resp *domain.Response) error

	// Match looks up key in the named partition.
	Match(ctx context.Context, partition, key string) (*domain.Response, error)

	// MatchAny looks up key across all partitions and returns the first
	// hit with the partition that held it.
	MatchAny(ctx context.Context, key string) (*domain.Response, string, error)

	// Partitions lists the current partition names.
	Partitions(ctx context.Context) ([]string, error)

	// Count returns the number of entries in the named partition.
	Count(ctx context.Context, partition string) (int, error)
}
