package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/TanmayKhot/hard-wordle-eval/internal/env"
	"github.com/TanmayKhot/hard-wordle-eval/internal/words"
)

func newSession(t *testing.T) *env.Session {
	t.Helper()
	dict, err := words.Embedded()
	if err != nil {
		t.Fatalf("dictionary: %v", err)
	}
	reg, err := env.NewRegistry(dict, env.DefaultSpecs()...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	s, err := reg.Make(env.HardWordleID, env.Options{Secret: "apple"})
	if err != nil {
		t.Fatalf("make: %v", err)
	}
	return s
}

func TestMemorySaveGetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	s := newSession(t)

	if _, err := m.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get before Save: %v", err)
	}
	if err := m.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := m.Get(ctx, s.ID)
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}
	if m.Len() != 1 {
		t.Fatalf("Len = %d", m.Len())
	}
	if err := m.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := m.Delete(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete: %v", err)
	}
}

func TestMemoryHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := NewMemoryStore().Save(ctx, newSession(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("Save with cancelled ctx: %v", err)
	}
}

func TestMemorySweep(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return clock }

	old := newSession(t)
	_ = m.Save(ctx, old)
	clock = clock.Add(2 * time.Hour)
	fresh := newSession(t)
	_ = m.Save(ctx, fresh)

	if n := m.Sweep(time.Hour); n != 1 {
		t.Fatalf("Sweep removed %d, want 1", n)
	}
	if _, err := m.Get(ctx, old.ID); !errors.Is(err, ErrNotFound) {
		t.Fatal("stale session survived the sweep")
	}
	if _, err := m.Get(ctx, fresh.ID); err != nil {
		t.Fatalf("fresh session swept: %v", err)
	}
}
