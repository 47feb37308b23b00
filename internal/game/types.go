// internal/game/types.go
//
// Core type definitions for the Wordle rule engine.
// Defines:
//   - Mark / Feedback: per-letter result of a guess (green/yellow/absent).
//   - GuessRecord: an accepted guess and its feedback.
//   - Game: the state of one episode.
//   - Outcome / Result: what a processed turn reports back to the turn loop.

package game

import "strings"

// Mark represents the evaluation result for a single letter in a guess.
// The values are the single-letter codes used in the textual feedback block.
type Mark string

const (
	MarkGreen  Mark = "G" // correct letter, correct position
	MarkYellow Mark = "Y" // letter present elsewhere
	MarkAbsent Mark = "X" // letter (or this occurrence of it) not present
)

// Feedback is a position-indexed list of marks for one guess.
type Feedback []Mark

// String renders the feedback as space separated codes, e.g. "G Y X X X".
func (f Feedback) String() string {
	parts := make([]string, len(f))
	for i, m := range f {
		parts[i] = string(m)
	}
	return strings.Join(parts, " ")
}

// Count returns how many positions carry mark m.
func (f Feedback) Count(m Mark) int {
	n := 0
	for _, x := range f {
		if x == m {
			n++
		}
	}
	return n
}

// Solved reports whether every position is green.
func (f Feedback) Solved() bool {
	return len(f) > 0 && f.Count(MarkGreen) == len(f)
}

// ParseFeedback reads a codes line such as "G Y X X X" or "GYXXX".
// Characters other than G, Y and X are ignored.
func ParseFeedback(line string) Feedback {
	var out Feedback
	for _, r := range line {
		switch Mark(r) {
		case MarkGreen, MarkYellow, MarkAbsent:
			out = append(out, Mark(r))
		}
	}
	return out
}

// GuessRecord is one accepted guess with its feedback. Records are appended to
// Game.History and never mutated.
type GuessRecord struct {
	Word     string   `json:"word"`
	Feedback Feedback `json:"feedback"`
}

// OutcomeKind classifies a processed turn.
type OutcomeKind string

const (
	OutcomeContinue    OutcomeKind = "continue"
	OutcomeWin         OutcomeKind = "win"
	OutcomeExhausted   OutcomeKind = "exhausted"
	OutcomeInvalidMove OutcomeKind = "invalid_move"
)

// Terminal reports whether the kind ends the episode.
func (k OutcomeKind) Terminal() bool {
	return k == OutcomeWin || k == OutcomeExhausted
}

// Outcome is the classified result of a turn. Err carries the typed cause of
// an invalid move (ErrFormat, *LengthError, a hard-mode violation, ...).
type Outcome struct {
	Kind   OutcomeKind `json:"kind"`
	Reason string      `json:"reason,omitempty"`
	Err    error       `json:"-"`
}

// Result is what a Processor hands back to the turn loop.
type Result struct {
	Done    bool    `json:"done"`
	Outcome Outcome `json:"outcome"`
	Message string  `json:"message"`
	Reward  float64 `json:"reward"`
}

// Game holds the state of a single episode. It is owned by one session and
// passed explicitly to every Process call.
type Game struct {
	ID             string        // Episode identifier.
	Secret         string        // The solution word (always lowercase).
	WordLength     int           // Letters per word.
	MaxGuesses     int           // Accepted guesses before the episode is exhausted.
	ErrorAllowance int           // Invalid moves tolerated before the episode ends.
	History        []GuessRecord // Accepted guesses, oldest first.
	InvalidMoves   int           // Invalid moves so far.
	Finished       bool          // True once the episode is over.
	Won            bool          // True if the episode finished with a win.
	FinalReward    float64       // Reward recorded when the episode ended.
	FinalReason    string        // Reason recorded when the episode ended.
}

// LastRecord returns the most recent accepted guess, or nil on the first turn.
func (g *Game) LastRecord() *GuessRecord {
	if len(g.History) == 0 {
		return nil
	}
	rec := g.History[len(g.History)-1]
	return &rec
}

// GuessesLeft is the number of accepted guesses still available.
func (g *Game) GuessesLeft() int {
	if n := g.MaxGuesses - len(g.History); n > 0 {
		return n
	}
	return 0
}

// PercentageCompletion is the share of green positions in the latest feedback,
// the partial-progress credit paid on invalid moves and on exhaustion.
func (g *Game) PercentageCompletion() float64 {
	last := g.LastRecord()
	if last == nil || len(last.Feedback) == 0 {
		return 0
	}
	return float64(last.Feedback.Count(MarkGreen)) / float64(len(last.Feedback))
}

// State reports a coarse string representation of the episode.
func (g *Game) State() string {
	if g.Finished {
		if g.Won {
			return "won"
		}
		return "lost"
	}
	return "playing"
}
