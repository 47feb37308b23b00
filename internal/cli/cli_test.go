package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/TanmayKhot/hard-wordle-eval/internal/dataset"
	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
)

func newTestApp(t *testing.T, stdin string) (*App, *bytes.Buffer) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("LOG_LEVEL", "error")
	var out, errOut bytes.Buffer
	return New().WithIO(strings.NewReader(stdin), &out, &errOut), &out
}

func TestDatasetCommand(t *testing.T) {
	app, out := newTestApp(t, "")
	dir := t.TempDir()
	args := []string{"dataset", "--out", dir, "--train", "5", "--eval", "3", "--seed", "9"}
	if err := app.ExecuteWithArgs(context.Background(), args); err != nil {
		t.Fatalf("dataset: %v", err)
	}
	if !strings.Contains(out.String(), "5 train / 3 eval") {
		t.Fatalf("output = %q", out.String())
	}
	evalRows, err := dataset.ReadFile(filepath.Join(dir, "eval.jsonl"))
	if err != nil {
		t.Fatalf("read eval: %v", err)
	}
	if len(evalRows) != 3 || !strings.HasPrefix(evalRows[0].Question, reward.WelcomeMarker) {
		t.Fatalf("eval rows = %+v", evalRows)
	}
}

func TestScoreCommand(t *testing.T) {
	completion := reward.Transcript{
		{Role: reward.RoleAssistant, Content: "<think>start</think>\n<guess>[apple]</guess>"},
		{Role: reward.RoleUser, Content: "Congratulations! You guessed the secret word.\nYou submitted [apple].\nFeedback:\nA P P L E\nG G G G G"},
	}
	raw, _ := json.Marshal(completion)
	app, out := newTestApp(t, string(raw))
	if err := app.ExecuteWithArgs(context.Background(), []string{"score", "--answer", "APPLE"}); err != nil {
		t.Fatalf("score: %v", err)
	}
	var got reward.Scores
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", out.String(), err)
	}
	if got.Rewards["exact_match"] != 1 || got.Total <= 1 {
		t.Fatalf("scores = %+v", got)
	}
}

func TestScoreRequiresAnswer(t *testing.T) {
	app, _ := newTestApp(t, "[]")
	if err := app.ExecuteWithArgs(context.Background(), []string{"score"}); err == nil {
		t.Fatal("expected error without --answer")
	}
}

func TestEvalSolver(t *testing.T) {
	app, _ := newTestApp(t, "")
	report := filepath.Join(t.TempDir(), "results.txt")
	args := []string{"eval", "-n", "3", "--workers", "2", "--no-db", "--json", "--report", report}
	if err := app.ExecuteWithArgs(context.Background(), args); err != nil {
		t.Fatalf("eval: %v", err)
	}
	b, err := os.ReadFile(report)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if !strings.Contains(string(b), "SUMMARY") {
		t.Fatal("report has no summary")
	}
}

func TestPlayHuman(t *testing.T) {
	app, out := newTestApp(t, "crane\napple\n")
	if err := app.ExecuteWithArgs(context.Background(), []string{"play", "--secret", "apple"}); err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out.String(), "won: true") {
		t.Fatalf("output = %q", out.String())
	}
}
