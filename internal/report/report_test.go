package report

import (
	"errors"
	"strings"
	"testing"

	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
	"github.com/TanmayKhot/hard-wordle-eval/internal/rollout"
)

func TestWriteSections(t *testing.T) {
	rec := &rollout.Record{
		ID:     "r1",
		Agent:  "solver",
		Answer: "apple",
		Won:    true,
		Turns:  1,
		Prompt: reward.Transcript{{Role: reward.RoleUser, Content: "Welcome to Wordle!"}},
		Completion: reward.Transcript{
			{Role: reward.RoleAssistant, Content: "<guess>[apple]</guess>"},
			{Role: reward.RoleUser, Content: "Congratulations! You guessed the word correctly!"},
		},
		Scores: reward.Scores{Total: 2.7, Rewards: map[string]float64{"format": 0.5, "exact_match": 1}},
	}
	sum := rollout.Summarize("run", "HardWordle-v0", []*rollout.Record{rec})

	var b strings.Builder
	if err := Write(&b, sum, []*rollout.Record{rec}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		"HARD MODE WORDLE ENVIRONMENT EVALUATION RESULTS",
		"PROMPT:", "COMPLETION:", "ANSWER:\n" + sub + "\napple",
		"Message 2 (user):\nCongratulations!",
		"exact_match: 1\nformat: 0.5",
		"RAW RESULTS (JSON):",
		`"answer": "apple"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWritePropagatesErrors(t *testing.T) {
	if err := Write(failWriter{}, rollout.Summary{}, nil); err == nil || err.Error() != "disk full" {
		t.Fatalf("err = %v", err)
	}
}
