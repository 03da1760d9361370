package bolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/arcbank/offlinegate/internal/domain"
)

const queueBucket = "queue"

// QueueStore implements ports.QueueStore on a bbolt bucket.
//
// Keys are 8-byte big-endian timestamps so the bucket cursor yields entries
// oldest first. Writes go through bbolt Update transactions, which fsync
// before returning: an acknowledged enqueue survives a process restart.
type QueueStore struct {
	db *DB
}

// NewQueueStore creates a queue store over the shared database and ensures
// its bucket exists.
func NewQueueStore(db *DB) (*QueueStore, error) {
	err := db.db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(queueBucket))
		if err != nil {
			return fmt.Errorf("create queue bucket: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &QueueStore{db: db}, nil
}

// Enqueue stores the snapshot durably before returning.
// A colliding timestamp overwrites the previous entry (last-write-wins).
func (s *QueueStore) Enqueue(ctx context.Context, req domain.QueuedRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal queued request: %w", err)
	}
	return s.db.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(queueBucket))
		if bucket == nil {
			return fmt.Errorf("queue bucket is missing")
		}
		return bucket.Put(queueKey(req.Timestamp), payload)
	})
}

// ListAll returns every queued entry, oldest first.
func (s *QueueStore) ListAll(ctx context.Context) ([]domain.QueuedRequest, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []domain.QueuedRequest
	err := s.db.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(queueBucket))
		if bucket == nil {
			return fmt.Errorf("queue bucket is missing")
		}
		return bucket.ForEach(func(k, v []byte) error {
			var req domain.QueuedRequest
			if err := json.Unmarshal(v, &req); err != nil {
				return fmt.Errorf("unmarshal queued request: %w", err)
			}
			out = append(out, req)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Remove deletes the entry with the given timestamp key.
func (s *QueueStore) Remove(ctx context.Context, key int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(queueBucket))
		if bucket == nil {
			return fmt.Errorf("queue bucket is missing")
		}
		return bucket.Delete(queueKey(key))
	})
}

// Clear deletes every queued entry.
func (s *QueueStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(queueBucket)); err != nil {
			return fmt.Errorf("delete queue bucket: %w", err)
		}
		_, err := tx.CreateBucket([]byte(queueBucket))
		return err
	})
}

func queueKey(ts int64) []byte {
	var k [8]byte
	binary.BigEndian.PutUint64(k[:], uint64(ts))
	return k[:]
}
