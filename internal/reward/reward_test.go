package reward

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestTurnDiscounted(t *testing.T) {
	completion := Transcript{
		{Role: RoleAssistant, Content: "Welcome to Wordle! A secret 5-letter word has been chosen..."},
		{Role: RoleAssistant, Content: "<guess>[crane]</guess>"},
		{Role: RoleUser, Content: "Feedback: X X Y X Y"},
		{Role: RoleAssistant, Content: "<guess>[great]</guess>"},
		{Role: RoleUser, Content: "Feedback: G G X X Y"},
		{Role: RoleAssistant, Content: "<guess>[grape]</guess>"},
		{Role: RoleUser, Content: "Congratulations! You guessed the word correctly!"},
	}
	p := GuessParser()
	if got := TurnDiscounted(p, completion, "grape"); got != 0.25 {
		t.Fatalf("TurnDiscounted = %v, want 0.25", got)
	}
	if got := TurnDiscounted(p, completion, "crane"); got != 0 {
		t.Fatalf("TurnDiscounted on a loss = %v, want 0", got)
	}
	// Without the welcome entry every assistant message is a turn.
	if got := TurnDiscounted(p, completion[1:], "grape"); got != 0.25 {
		t.Fatalf("TurnDiscounted without welcome = %v, want 0.25", got)
	}
	if got := TurnDiscounted(p, nil, "grape"); got != 0 {
		t.Fatalf("TurnDiscounted(nil) = %v", got)
	}
}

func TestExactMatch(t *testing.T) {
	p := ThinkParser()
	tests := []struct {
		name       string
		completion Transcript
		want       float64
	}{
		{"last guess wins", Transcript{
			{Role: RoleAssistant, Content: "<think>hm</think><guess>[crane]</guess>"},
			{Role: RoleAssistant, Content: "<think>sure</think>\n<guess>\n[apple]\n</guess>"},
		}, 1},
		{"earlier guess does not count", Transcript{
			{Role: RoleAssistant, Content: "<guess>[apple]</guess>"},
			{Role: RoleAssistant, Content: "<guess>[crane]</guess>"},
		}, 0},
		{"missing field falls back to earlier message", Transcript{
			{Role: RoleAssistant, Content: "<guess>[apple]</guess>"},
			{Role: RoleAssistant, Content: "no idea"},
		}, 1},
		{"brackets required", Transcript{
			{Role: RoleAssistant, Content: "<guess>apple</guess>"},
		}, 0},
		{"user messages ignored", Transcript{
			{Role: RoleUser, Content: "<guess>[apple]</guess>"},
		}, 0},
		{"empty", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExactMatch(p, tt.completion, "apple"); got != tt.want {
				t.Fatalf("ExactMatch = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPartialCredit(t *testing.T) {
	tests := []struct {
		name       string
		completion Transcript
		want       float64
	}{
		{"two line block", Transcript{
			{Role: RoleAssistant, Content: "You are playing Wordle..."},
			{Role: RoleAssistant, Content: "<guess>[gnome]</guess>"},
			{Role: RoleUser, Content: "You submitted [GNOME].\nFeedback:\nG X Y X X"},
			{Role: RoleAssistant, Content: "<guess>[goats]</guess>"},
			{Role: RoleUser, Content: "You submitted [GOATS].\nFeedback:\nG O A T S\nG G X Y Y"},
		}, 0.6},
		{"invalid move", Transcript{
			{Role: RoleAssistant, Content: "<guess>[notaword]</guess>"},
			{Role: RoleUser, Content: "'notaword' is not an English word."},
		}, 0},
		{"single line block", Transcript{
			{Role: RoleUser, Content: "You submitted [GNOME].\nFeedback:\nG X Y X X"},
		}, 0},
		{"last marker wins", Transcript{
			{Role: RoleUser, Content: "Feedback:\nA\nX\nFeedback:\nA P P L E\nG G G G G"},
		}, 1},
		{"no user message", Transcript{
			{Role: RoleAssistant, Content: "Feedback:\nA P P L E\nG G G G G"},
		}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PartialCredit(GuessParser(), tt.completion); !approx(got, tt.want) {
				t.Fatalf("PartialCredit = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	p := ThinkParser()
	completion := Transcript{
		{Role: RoleAssistant, Content: "<think>a</think><guess>[crane]</guess>"},
		{Role: RoleAssistant, Content: "<guess>[slate]</guess>"},
	}
	if got := Format(p, completion); !approx(got, 0.75) {
		t.Fatalf("Format = %v, want 0.75", got)
	}
	if got := Format(p, nil); got != 0 {
		t.Fatalf("Format(nil) = %v", got)
	}
}

func TestRubric(t *testing.T) {
	completion := Transcript{
		{Role: RoleUser, Content: "Welcome to Wordle!"},
		{Role: RoleAssistant, Content: "<think>x</think><guess>[crane]</guess>"},
		{Role: RoleUser, Content: "You submitted [CRANE].\nFeedback:\nC R A N E\nX X Y X G"},
		{Role: RoleAssistant, Content: "<think>y</think><guess>[apple]</guess>"},
		{Role: RoleUser, Content: "Congratulations! You guessed the word correctly!\nYou submitted [APPLE].\nFeedback:\nA P P L E\nG G G G G"},
	}
	r := NewRubric(ThinkParser(), DefaultWeights())
	s := r.Score(completion, "apple")
	want := map[string]float64{
		"exact_match":     1,
		"partial_credit":  1,
		"turn_discounted": 1.0 / 3,
		"format":          1,
	}
	for name, v := range want {
		if !approx(s.Rewards[name], v) {
			t.Errorf("%s = %v, want %v", name, s.Rewards[name], v)
		}
	}
	if !approx(s.Total, 1+1+1.0/3+0.2) {
		t.Fatalf("total = %v", s.Total)
	}
}
