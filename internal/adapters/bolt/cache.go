package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/arcbank/offlinegate/internal/domain"
)

const cacheBucketPrefix = "cache/"

// CacheStore implements ports.CacheStore on bbolt buckets.
// Each partition is one bucket; entries are JSON-encoded responses keyed
// by request URL.
type CacheStore struct {
	db *DB
}

// NewCacheStore creates a cache store over the shared database.
func NewCacheStore(db *DB) *CacheStore {
	return &CacheStore{db: db}
}

// EnsurePartition creates the partition bucket if it does not exist.
func (s *CacheStore) EnsurePartition(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("partition name is required")
	}
	return s.db.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(partitionBucket(name))
		if err != nil {
			return fmt.Errorf("create partition %s: %w", name, err)
		}
		return nil
	})
}

// EvictNotIn deletes every partition not named in keep and returns the
// removed names. Runs in a single transaction so a crash mid-eviction
// leaves either the old or the new set, never a half state.
func (s *CacheStore) EvictNotIn(ctx context.Context, keep []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	keepSet := make(map[string]bool, len(keep))
	for _, k := range keep {
		keepSet[k] = true
	}

	var evicted []string
	err := s.db.db.Update(func(tx *bbolt.Tx) error {
		var stale [][]byte
		c := tx.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if v != nil || !bytes.HasPrefix(k, []byte(cacheBucketPrefix)) {
				continue
			}
			name := string(k[len(cacheBucketPrefix):])
			if !keepSet[name] {
				stale = append(stale, append([]byte(nil), k...))
				evicted = append(evicted, name)
			}
		}
		for _, k := range stale {
			if err := tx.DeleteBucket(k); err != nil {
				return fmt.Errorf("delete partition %s: %w", k, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return evicted, nil
}

// Put stores a response under key in the named partition.
func (s *CacheStore) Put(ctx context.Context, partition, key string, resp *domain.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	return s.db.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(partitionBucket(partition))
		if bucket == nil {
			return fmt.Errorf("partition %s is missing", partition)
		}
		return bucket.Put([]byte(key), payload)
	})
}

// Match looks up key in the named partition.
func (s *CacheStore) Match(ctx context.Context, partition, key string) (*domain.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var resp *domain.Response
	err := s.db.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(partitionBucket(partition))
		if bucket == nil {
			return domain.ErrCacheMiss
		}
		payload := bucket.Get([]byte(key))
		if payload == nil {
			return domain.ErrCacheMiss
		}
		resp = &domain.Response{}
		if err := json.Unmarshal(payload, resp); err != nil {
			return fmt.Errorf("unmarshal cached response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// MatchAny looks up key across all partitions, returning the first hit and
// the partition that held it.
func (s *CacheStore) MatchAny(ctx context.Context, key string) (*domain.Response, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	var (
		resp *domain.Response
		hit  string
	)
	err := s.db.db.View(func(tx *bbolt.Tx) error {
		c := tx.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if v != nil || !bytes.HasPrefix(k, []byte(cacheBucketPrefix)) {
				continue
			}
			bucket := tx.Bucket(k)
			if bucket == nil {
				continue
			}
			payload := bucket.Get([]byte(key))
			if payload == nil {
				continue
			}
			resp = &domain.Response{}
			if err := json.Unmarshal(payload, resp); err != nil {
				return fmt.Errorf("unmarshal cached response: %w", err)
			}
			hit = string(k[len(cacheBucketPrefix):])
			return nil
		}
		return domain.ErrCacheMiss
	})
	if err != nil {
		return nil, "", err
	}
	return resp, hit, nil
}

// Partitions lists the current partition names.
func (s *CacheStore) Partitions(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var names []string
	err := s.db.db.View(func(tx *bbolt.Tx) error {
		c := tx.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if v != nil || !bytes.HasPrefix(k, []byte(cacheBucketPrefix)) {
				continue
			}
			names = append(names, string(k[len(cacheBucketPrefix):]))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Count returns the number of entries in the named partition.
func (s *CacheStore) Count(ctx context.Context, partition string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	var n int
	err := s.db.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(partitionBucket(partition))
		if bucket == nil {
			return fmt.Errorf("partition %s is missing", partition)
		}
		n = bucket.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func partitionBucket(name string) []byte {
	return []byte(cacheBucketPrefix + name)
}
