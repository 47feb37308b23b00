package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/TanmayKhot/hard-wordle-eval/internal/game"
	"github.com/TanmayKhot/hard-wordle-eval/internal/hardmode"
	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
)

func TestObserved(t *testing.T) {
	tr := reward.Transcript{
		{Role: reward.RoleUser, Content: "Welcome to Wordle!"},
		{Role: reward.RoleAssistant, Content: "<guess>[crane]</guess>"},
		{Role: reward.RoleUser, Content: "You submitted [CRANE]. You have 5 guesses left.\nFeedback:\nC R A N E\nX X Y X G"},
		{Role: reward.RoleAssistant, Content: "<guess>[zz]</guess>"},
		{Role: reward.RoleUser, Content: "Your guess must be exactly 5 letters."},
	}
	got := Observed(tr)
	if len(got) != 1 || got[0].Word != "crane" || got[0].Feedback.String() != "X X Y X G" {
		t.Fatalf("Observed = %+v", got)
	}
}

func TestSolverFiltersCandidates(t *testing.T) {
	s := NewSolver([]string{"apple", "angle", "ample", "crane", "slate"}, 1, false)
	history := []game.GuessRecord{{Word: "crane", Feedback: game.Score("apple", "crane")}}
	got := s.Candidates(history)
	for _, w := range got {
		if w == "crane" || w == "slate" {
			t.Fatalf("inconsistent candidate %q kept: %v", w, got)
		}
	}
	if len(got) == 0 {
		t.Fatal("secret eliminated")
	}
}

func TestSolverRepliesAreHardModeLegal(t *testing.T) {
	words := []string{"apple", "apply", "angle", "ample", "crane", "slate", "plank", "album"}
	s := NewSolver(words, 7, true)
	s.Opener = "crane"
	proc := hardmode.Wrap(game.NewEngine(nil))
	g := game.New("apple", game.Config{ErrorAllowance: 0})
	tr := reward.Transcript{{Role: reward.RoleUser, Content: "Welcome to Wordle!"}}
	p := reward.ThinkParser()

	for !g.Finished {
		reply, err := s.Act(context.Background(), tr)
		if err != nil {
			t.Fatalf("Act: %v", err)
		}
		guess, ok := p.Field(reply, "guess")
		if !ok {
			t.Fatalf("reply without guess: %q", reply)
		}
		if _, ok := p.Field(reply, "think"); !ok {
			t.Fatalf("think solver omitted <think>: %q", reply)
		}
		res, err := proc.Process(g, guess)
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
		if res.Outcome.Kind == game.OutcomeInvalidMove {
			t.Fatalf("solver made an invalid move %q: %s", guess, res.Message)
		}
		tr = append(tr,
			reward.Message{Role: reward.RoleAssistant, Content: reply},
			reward.Message{Role: reward.RoleUser, Content: res.Message})
	}
	if !g.Won {
		t.Fatalf("solver lost: history %+v", g.History)
	}
}

func TestScripted(t *testing.T) {
	s := &Scripted{Replies: []string{"a", "b"}}
	ctx := context.Background()
	for _, want := range []string{"a", "b"} {
		got, err := s.Act(ctx, nil)
		if err != nil || got != want {
			t.Fatalf("Act = %q, %v", got, err)
		}
	}
	if _, err := s.Act(ctx, nil); !errors.Is(err, ErrNoMoreReplies) {
		t.Fatalf("exhausted script: %v", err)
	}
}

func TestHumanWrapsBareWords(t *testing.T) {
	var out strings.Builder
	h := NewHuman(strings.NewReader("crane\n[slate]\n"), &out)
	tr := reward.Transcript{{Role: reward.RoleUser, Content: "Welcome to Wordle!"}}
	for _, want := range []string{"<guess>[crane]</guess>", "<guess>[slate]</guess>"} {
		got, err := h.Act(context.Background(), tr)
		if err != nil || got != want {
			t.Fatalf("Act = %q, %v", got, err)
		}
	}
	if !strings.Contains(out.String(), "Welcome to Wordle!") {
		t.Fatalf("observation not shown: %q", out.String())
	}
}
