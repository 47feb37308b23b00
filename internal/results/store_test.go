package results

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
	"github.com/TanmayKhot/hard-wordle-eval/internal/rollout"
)

func openTemp(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "results.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func record(id, agent string, won bool, turns int, total float64) *rollout.Record {
	return &rollout.Record{
		ID:     id,
		RunID:  "run-1",
		EnvID:  "HardWordle-v0",
		Agent:  agent,
		Answer: "apple",
		Won:    won,
		Turns:  turns,
		Scores: reward.Scores{Total: total, Rewards: map[string]float64{"exact_match": total}},
		Completion: reward.Transcript{
			{Role: reward.RoleAssistant, Content: "<guess>[apple]</guess>"},
		},
		Duration:  1500 * time.Millisecond,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestSaveGet(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)

	in := record("r1", "solver", true, 3, 2.5)
	if err := s.Save(ctx, in); err != nil {
		t.Fatalf("Save: %v", err)
	}
	// duplicate ids are ignored
	if err := s.Save(ctx, record("r1", "other", false, 6, 0)); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := s.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Agent != "solver" || !got.Won || got.Turns != 3 || got.Scores.Total != 2.5 {
		t.Fatalf("Get = %+v", got)
	}
	if got.Scores.Rewards["exact_match"] != 2.5 || len(got.Completion) != 1 {
		t.Fatalf("json columns lost: %+v", got)
	}
	if got.Duration != 1500*time.Millisecond || !got.CreatedAt.Equal(in.CreatedAt) {
		t.Fatalf("times = %v %v", got.Duration, got.CreatedAt)
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get missing: %v", err)
	}
}

func TestLeaderboardOrder(t *testing.T) {
	ctx := context.Background()
	s, _ := openTemp(t)
	for _, r := range []*rollout.Record{
		record("a1", "alpha", true, 4, 2),
		record("a2", "alpha", false, 6, 0),
		record("b1", "beta", true, 3, 2),
		record("b2", "beta", false, 6, 0),
		record("c1", "gamma", true, 2, 3),
	} {
		if err := s.Save(ctx, r); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	rows, err := s.Leaderboard(ctx, "HardWordle-v0", 0)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	want := []string{"gamma", "beta", "alpha"}
	if len(rows) != len(want) {
		t.Fatalf("rows = %+v", rows)
	}
	for i, w := range want {
		if rows[i].Agent != w {
			t.Fatalf("rank %d = %s, want %s (%+v)", i, rows[i].Agent, w, rows)
		}
	}
	if rows[1].Episodes != 2 || rows[1].WinRate != 0.5 || rows[1].MeanTurns != 4.5 {
		t.Fatalf("beta row = %+v", rows[1])
	}

	other, err := s.Leaderboard(ctx, "Wordle-v0", 5)
	if err != nil || len(other) != 0 {
		t.Fatalf("other env rows = %+v, %v", other, err)
	}

	sum, err := s.RunSummary(ctx, "run-1")
	if err != nil {
		t.Fatalf("RunSummary: %v", err)
	}
	if sum.Episodes != 5 || sum.Wins != 3 || sum.EnvID != "HardWordle-v0" {
		t.Fatalf("summary = %+v", sum)
	}
	if _, err := s.RunSummary(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("RunSummary missing: %v", err)
	}
}

func TestMigrationsIdempotent(t *testing.T) {
	s, path := openTemp(t)
	if err := s.Save(context.Background(), record("x", "solver", true, 1, 1)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	s.Close()

	again, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()
	var n int
	if err := again.db.QueryRow(`SELECT COUNT(1) FROM _migrations`).Scan(&n); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if n != 2 {
		t.Fatalf("_migrations has %d rows", n)
	}
	if _, err := again.Get(context.Background(), "x"); err != nil {
		t.Fatalf("row lost across reopen: %v", err)
	}
}
