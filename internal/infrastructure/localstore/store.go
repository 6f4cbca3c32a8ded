// Package localstore keeps client state in a single BoltDB file: the persisted
// session and the queue of changes not yet delivered to the account directory.
package localstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	sessionBucket = []byte("session")
	pendingBucket = []byte("pending")
)

// ErrCorrupt reports a stored value that cannot be decoded.
var ErrCorrupt = errors.New("localstore: corrupt record")

// Store wraps BoltDB.
type Store struct {
	db *bolt.DB
}

// Open initializes the BoltDB file and ensures the buckets exist.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, err
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{sessionBucket, pendingBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Enqueue stores a pending item using a priority-aware key.
func (s *Store) Enqueue(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	item.normalize()
	item.bucketKey = []byte(buildKey(item))

	payload, err := json.Marshal(item)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pendingBucket).Put(item.bucketKey, payload)
	})
}

// EnqueueLatest stores item and drops pending items of the same kind for the
// same account in one transaction, so only the newest value is replayed.
func (s *Store) EnqueueLatest(item Item) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	item.normalize()
	item.bucketKey = []byte(buildKey(item))

	payload, err := json.Marshal(item)
	if err != nil {
		return 0, err
	}

	var dropped int
	err = s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(pendingBucket)
		var stale [][]byte
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var existing Item
			if err := json.Unmarshal(v, &existing); err != nil {
				continue
			}
			if existing.AccountID == item.AccountID && existing.Kind == item.Kind {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		dropped = len(stale)
		return bucket.Put(item.bucketKey, payload)
	})
	return dropped, err
}

// GetBatch returns up to limit items, oldest first within a priority, without removing them.
func (s *Store) GetBatch(limit int) ([]Item, error) {
	if s == nil || s.db == nil {
		return nil, bolt.ErrDatabaseNotOpen
	}
	if limit <= 0 {
		limit = 50
	}

	var items []Item
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(pendingBucket).Cursor()
		for k, v := c.First(); k != nil && len(items) < limit; k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			item.bucketKey = append([]byte(nil), k...)
			items = append(items, item)
		}
		return nil
	})
	return items, err
}

// Remove deletes the provided item from the queue.
func (s *Store) Remove(item Item) error {
	if s == nil || s.db == nil {
		return bolt.ErrDatabaseNotOpen
	}
	if len(item.bucketKey) == 0 {
		return s.deleteByID(item.ID)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pendingBucket).Delete(item.bucketKey)
	})
}

// Requeue writes a retried item back in place, keeping its queue time so
// ordering and expiry still follow the original change. It reports false,
// and removes the item, when a newer change of the same kind for the same
// account is already queued.
func (s *Store) Requeue(item Item) (bool, error) {
	if s == nil || s.db == nil {
		return false, bolt.ErrDatabaseNotOpen
	}
	item.normalize()
	previous := item.bucketKey
	item.bucketKey = []byte(buildKey(item))

	payload, err := json.Marshal(item)
	if err != nil {
		return false, err
	}

	requeued := false
	err = s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(pendingBucket)
		superseded := false
		var own [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var existing Item
			if err := json.Unmarshal(v, &existing); err != nil {
				return nil
			}
			if existing.ID == item.ID {
				own = append(own, append([]byte(nil), k...))
				return nil
			}
			if existing.AccountID == item.AccountID && existing.Kind == item.Kind &&
				existing.Timestamp.After(item.Timestamp) {
				superseded = true
			}
			return nil
		})
		if err != nil {
			return err
		}
		if len(previous) > 0 {
			own = append(own, previous)
		}
		for _, k := range own {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		if superseded {
			return nil
		}
		requeued = true
		return bucket.Put(item.bucketKey, payload)
	})
	return requeued, err
}

// Size returns the number of pending items.
func (s *Store) Size() (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	var count int
	err := s.db.View(func(tx *bolt.Tx) error {
		count = tx.Bucket(pendingBucket).Stats().KeyN
		return nil
	})
	return count, err
}

// Cleanup removes pending items queued before olderThan and reports how many went.
func (s *Store) Cleanup(olderThan time.Time) (int, error) {
	if s == nil || s.db == nil {
		return 0, bolt.ErrDatabaseNotOpen
	}
	removed := 0
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(pendingBucket)
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				return nil
			}
			if item.Timestamp.Before(olderThan) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		removed = len(stale)
		return nil
	})
	return removed, err
}

// Close closes the Bolt database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) deleteByID(id string) error {
	if id == "" {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(pendingBucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var item Item
			if err := json.Unmarshal(v, &item); err != nil {
				continue
			}
			if item.ID == id {
				return c.Delete()
			}
		}
		return nil
	})
}

func buildKey(item Item) string {
	return fmt.Sprintf("%d_%020d_%s", item.Priority, item.Timestamp.UnixNano(), item.ID)
}
