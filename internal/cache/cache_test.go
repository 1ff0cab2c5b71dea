package cache

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	file, err := NewFileStore(filepath.Join(dir, "files"))
	if err != nil {
		t.Fatal(err)
	}
	sqlite, err := NewSQLiteStore(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatal(err)
	}
	bdg, err := NewBadgerStore(filepath.Join(dir, "badger"), time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   file,
		"sqlite": sqlite,
		"badger": bdg,
	}
}

func TestCache_TTLContract(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()
			clock := &fakeClock{t: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
			c := New(store, time.Hour, WithClock(clock.Now))

			if _, ok := c.Get(ctx, "ai_INV001"); ok {
				t.Fatal("expected miss on empty cache")
			}
			if err := c.Put(ctx, "ai_INV001", "Healthy portfolio.", "gpt-4o-mini"); err != nil {
				t.Fatal(err)
			}

			e, ok := c.Get(ctx, "ai_INV001")
			if !ok || e.Payload != "Healthy portfolio." || e.Model != "gpt-4o-mini" {
				t.Fatalf("get after put = %+v, %v", e, ok)
			}

			clock.Advance(time.Hour)
			if _, ok := c.Get(ctx, "ai_INV001"); !ok {
				t.Error("entry exactly TTL old must still be served")
			}

			clock.Advance(time.Second)
			if _, ok := c.Get(ctx, "ai_INV001"); ok {
				t.Error("entry older than TTL must be absent")
			}

			if err := c.Put(ctx, "ai_INV001", "Refreshed.", ""); err != nil {
				t.Fatal(err)
			}
			if e, ok := c.Get(ctx, "ai_INV001"); !ok || e.Payload != "Refreshed." {
				t.Errorf("overwrite = %+v, %v", e, ok)
			}
		})
	}
}

func TestCache_Purge(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			defer store.Close()
			clock := &fakeClock{t: time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)}
			c := New(store, time.Hour, WithClock(clock.Now))

			if err := c.Put(ctx, "ai_old", "old", ""); err != nil {
				t.Fatal(err)
			}
			clock.Advance(2 * time.Hour)
			if err := c.Put(ctx, "ai_new", "new", ""); err != nil {
				t.Fatal(err)
			}

			n, err := c.Purge(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if n != 1 {
				t.Errorf("purged %d entries, want 1", n)
			}
			if _, err := store.Get(ctx, "ai_old"); err != ErrNotFound {
				t.Errorf("old entry still stored: %v", err)
			}
			if _, ok := c.Get(ctx, "ai_new"); !ok {
				t.Error("fresh entry purged")
			}
		})
	}
}

func TestNew_DefaultTTL(t *testing.T) {
	if got := New(NewMemoryStore(), 0).TTL(); got != DefaultTTL {
		t.Errorf("TTL = %v, want %v", got, DefaultTTL)
	}
}
