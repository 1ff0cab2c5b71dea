package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// BadgerStore keeps entries in an embedded Badger database. Entries are written with a Badger TTL
// slightly above the cache TTL so the engine reclaims them without an explicit purge.
type BadgerStore struct {
	db  *badger.DB
	ttl time.Duration
}

// NewBadgerStore opens the database in dir. A non-positive ttl disables the native expiry.
func NewBadgerStore(dir string, ttl time.Duration) (*BadgerStore, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	log.Printf("[INFO] badger cache opened: %s", dir)
	return &BadgerStore{db: db, ttl: ttl}, nil
}

func (b *BadgerStore) Get(_ context.Context, key string) (Entry, error) {
	var e Entry
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, &e)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (b *BadgerStore) Put(_ context.Context, e Entry) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(e.Key), raw)
		if b.ttl > 0 {
			entry = entry.WithTTL(b.ttl + time.Hour)
		}
		return txn.SetEntry(entry)
	})
}

// Purge deletes stale entries eagerly and runs one value-log GC round.
func (b *BadgerStore) Purge(_ context.Context, cutoff time.Time) (int, error) {
	var stale [][]byte
	err := b.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			var e Entry
			if err := json.Unmarshal(raw, &e); err != nil || e.CreatedAt.Before(cutoff) {
				stale = append(stale, item.KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	wb := b.db.NewWriteBatch()
	defer wb.Cancel()
	for _, k := range stale {
		if err := wb.Delete(k); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}

	if err := b.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		log.Printf("[WARN] badger value log gc: %v", err)
	}
	return len(stale), nil
}

func (b *BadgerStore) Close() error {
	log.Println("[INFO] closing badger cache")
	return b.db.Close()
}
