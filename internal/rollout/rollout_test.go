package rollout

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/TanmayKhot/hard-wordle-eval/internal/agent"
	"github.com/TanmayKhot/hard-wordle-eval/internal/env"
	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
	"github.com/TanmayKhot/hard-wordle-eval/internal/words"
)

func testRegistry(t *testing.T) *env.Registry {
	t.Helper()
	dict, err := words.Embedded()
	if err != nil {
		t.Fatalf("dictionary: %v", err)
	}
	r, err := env.NewRegistry(dict, env.DefaultSpecs()...)
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return r
}

func TestRunScripted(t *testing.T) {
	reg := testRegistry(t)
	sess, err := reg.Make(env.HardWordleID, env.Options{Secret: "apple"})
	if err != nil {
		t.Fatalf("Make: %v", err)
	}
	a := &agent.Scripted{Replies: []string{
		"<think>open</think>\n<guess>[crane]</guess>",
		"no tags here",
		"<guess>[ample]</guess>",
		"<think>got it</think>\n<guess>[apple]</guess>",
	}}
	p := reward.ThinkParser()
	rec, err := Run(context.Background(), sess, a, p, env.SystemPrompt(true), 0)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rec.Won || rec.Truncated || rec.Turns != 3 || rec.InvalidMoves != 1 {
		t.Fatalf("record = %+v", rec)
	}
	if len(rec.Prompt) != 2 || rec.Prompt[0].Role != reward.RoleSystem {
		t.Fatalf("prompt = %+v", rec.Prompt)
	}
	if len(rec.Completion) != 8 {
		t.Fatalf("completion has %d messages", len(rec.Completion))
	}

	s := reward.NewRubric(p, reward.DefaultWeights()).Score(rec.Completion, rec.Answer)
	// exact 1 + partial 1 + turn-discounted 1/5 + 0.2 × format 0.625
	if math.Abs(s.Total-2.325) > 1e-9 {
		t.Fatalf("rubric total = %v (%v)", s.Total, s.Rewards)
	}
}

func TestRunTruncates(t *testing.T) {
	reg := testRegistry(t)
	sess, _ := reg.Make(env.WordleID, env.Options{Secret: "apple"})
	a := &agent.Scripted{Replies: []string{"<guess>[crane]</guess>", "<guess>[slate]</guess>"}}
	rec, err := Run(context.Background(), sess, a, reward.GuessParser(), "", 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !rec.Truncated || rec.Won || rec.Turns != 2 {
		t.Fatalf("record = %+v", rec)
	}
}

func TestRunAgentError(t *testing.T) {
	reg := testRegistry(t)
	sess, _ := reg.Make(env.WordleID, env.Options{Secret: "apple"})
	_, err := Run(context.Background(), sess, &agent.Scripted{}, reward.GuessParser(), "", 0)
	if !errors.Is(err, agent.ErrNoMoreReplies) {
		t.Fatalf("Run err = %v", err)
	}
}

type memSink struct {
	mu   sync.Mutex
	recs []*Record
}

func (m *memSink) Save(_ context.Context, rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func TestRunnerSolver(t *testing.T) {
	reg := testRegistry(t)
	answers := reg.Dictionary().Answers()
	tasks := []Task{{0, "apple"}, {1, "crane"}, {2, "slate"}, {3, "album"}, {4, "plate"}}
	sink := &memSink{}
	r := &Runner{
		Registry:     reg,
		EnvID:        env.HardWordleID,
		NewAgent:     func(task Task) agent.Agent { return agent.NewSolver(answers, int64(task.Index), true) },
		Rubric:       reward.NewRubric(reward.ThinkParser(), reward.DefaultWeights()),
		SystemPrompt: env.SystemPrompt(true),
		Workers:      3,
		Sink:         sink,
	}
	recs, sum, err := r.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(recs) != len(tasks) || len(sink.recs) != len(tasks) {
		t.Fatalf("got %d records, %d stored", len(recs), len(sink.recs))
	}
	for i, rec := range recs {
		if rec.Answer != tasks[i].Secret {
			t.Fatalf("record %d answer %q, want %q", i, rec.Answer, tasks[i].Secret)
		}
		if rec.InvalidMoves != 0 {
			t.Fatalf("solver made invalid moves on %q", rec.Answer)
		}
		if rec.RunID != sum.RunID {
			t.Fatal("run id not propagated")
		}
		if rec.Scores.Rewards["format"] != 1 {
			t.Fatalf("format reward = %v", rec.Scores.Rewards["format"])
		}
	}
	if sum.Episodes != 5 || sum.InvalidMoves != 0 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestSummarize(t *testing.T) {
	recs := []*Record{
		{Won: true, Turns: 3, Scores: reward.Scores{Total: 2}},
		{Won: false, Turns: 6, InvalidMoves: 2, Scores: reward.Scores{Total: 0.5}},
	}
	s := Summarize("r", "Wordle-v0", recs)
	if s.Wins != 1 || s.WinRate != 0.5 || s.MeanTurns != 4.5 || s.MeanReward != 1.25 || s.InvalidMoves != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if z := Summarize("r", "x", nil); z.Episodes != 0 || z.WinRate != 0 {
		t.Fatalf("empty summary = %+v", z)
	}
}
