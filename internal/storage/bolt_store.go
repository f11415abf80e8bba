package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var seenBucket = []byte("seen_recipes")

var errBucketMissing = errors.New("seen_recipes bucket missing")

// boltStore keeps seen recipes in a BoltDB file. Each value is the entry's expiry
// as big-endian unix nanoseconds; expired entries are dropped on lookup and by a
// sweep that runs at most once per cleanup interval.
type boltStore struct {
	db      *bolt.DB
	ttl     time.Duration
	every   time.Duration
	nowFunc func() time.Time

	sweepMu   sync.Mutex
	lastSweep time.Time
}

func openBolt(path string, opts Options) (*boltStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(seenBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create %s bucket: %w", seenBucket, err)
	}

	return &boltStore{
		db:        db,
		ttl:       opts.RecipeTTL,
		every:     opts.CleanupInterval,
		nowFunc:   time.Now,
		lastSweep: time.Now(),
	}, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SeenRecipe reports whether the recipe is marked for the feed and still live.
func (b *boltStore) SeenRecipe(feedID, recipeID string) (bool, error) {
	now := b.nowFunc()
	if err := b.sweep(now); err != nil {
		return false, err
	}

	key := []byte(recipeKey(feedID, recipeID))
	var expired bool
	var live bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(seenBucket)
		if bucket == nil {
			return errBucketMissing
		}
		value := bucket.Get(key)
		if value == nil {
			return nil
		}
		live = isLive(value, now)
		expired = !live
		return nil
	})
	if err != nil || !expired {
		return live, err
	}

	return false, b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(seenBucket)
		if bucket == nil {
			return errBucketMissing
		}
		return bucket.Delete(key)
	})
}

// MarkRecipe records the recipe for the feed until the TTL elapses.
func (b *boltStore) MarkRecipe(feedID, recipeID string) error {
	now := b.nowFunc()
	if err := b.sweep(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(seenBucket)
		if bucket == nil {
			return errBucketMissing
		}
		return bucket.Put([]byte(recipeKey(feedID, recipeID)), encodeExpiry(now.Add(b.ttl)))
	})
}

func (b *boltStore) sweep(now time.Time) error {
	b.sweepMu.Lock()
	defer b.sweepMu.Unlock()
	if now.Sub(b.lastSweep) < b.every {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(seenBucket)
		if bucket == nil {
			return errBucketMissing
		}
		c := bucket.Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if isLive(v, now) {
				continue
			}
			if err := c.Delete(); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sweep expired recipes: %w", err)
	}
	b.lastSweep = now
	return nil
}

func encodeExpiry(t time.Time) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(t.UnixNano()))
	return buf
}

// isLive reports whether value holds an expiry after now. Malformed values count
// as expired.
func isLive(value []byte, now time.Time) bool {
	if len(value) != 8 {
		return false
	}
	exp := int64(binary.BigEndian.Uint64(value))
	return exp > now.UnixNano()
}
