// internal/hardmode/constraints.go
//
// Hard-mode constraints for Wordle.
//
// Constraints come only from the immediately preceding accepted guess, never
// from the whole history:
//   - every green (position, letter) must be repeated at that position;
//   - every yellow letter must appear somewhere in the next guess.
//
// Greens are checked first in increasing position order; yellows only once
// all greens pass, in the order they were discovered. The first failure wins.

package hardmode

import (
	"fmt"
	"strings"

	"github.com/TanmayKhot/hard-wordle-eval/internal/game"
)

// Green is a required letter at a fixed position (0-indexed).
type Green struct {
	Position int
	Letter   byte
}

// Constraints is derived per turn and never stored.
type Constraints struct {
	Greens  []Green // increasing Position
	Yellows []byte  // unique, discovery order
}

// Empty reports whether the constraints accept every well-formed guess.
func (c Constraints) Empty() bool {
	return len(c.Greens) == 0 && len(c.Yellows) == 0
}

// Derive builds the constraints implied by the last accepted guess. A nil
// record (first turn) yields empty constraints.
func Derive(last *game.GuessRecord) Constraints {
	var c Constraints
	if last == nil {
		return c
	}
	seen := make(map[byte]bool)
	for i := 0; i < len(last.Word) && i < len(last.Feedback); i++ {
		letter := last.Word[i]
		switch last.Feedback[i] {
		case game.MarkGreen:
			c.Greens = append(c.Greens, Green{Position: i, Letter: letter})
		case game.MarkYellow:
			if !seen[letter] {
				seen[letter] = true
				c.Yellows = append(c.Yellows, letter)
			}
		}
	}
	return c
}

// Validate checks guess against c and returns nil or a *Violation.
func (c Constraints) Validate(guess string) error {
	for _, g := range c.Greens {
		if g.Position >= len(guess) || guess[g.Position] != g.Letter {
			return &Violation{Kind: GreenMismatch, Position: g.Position, Letter: g.Letter}
		}
	}
	for _, y := range c.Yellows {
		if strings.IndexByte(guess, y) < 0 {
			return &Violation{Kind: YellowMissing, Position: -1, Letter: y}
		}
	}
	return nil
}

// ViolationKind names the broken rule.
type ViolationKind string

const (
	GreenMismatch ViolationKind = "green_mismatch"
	YellowMissing ViolationKind = "yellow_missing"
)

// Violation is a recoverable hard-mode failure. Position is 0-indexed and -1
// for yellow violations; Error renders it 1-indexed.
type Violation struct {
	Kind     ViolationKind
	Position int
	Letter   byte
}

func (v *Violation) Error() string {
	letter := strings.ToUpper(string(v.Letter))
	if v.Kind == GreenMismatch {
		return fmt.Sprintf("Hard Mode violation: Letter '%s' must be in position %d.", letter, v.Position+1)
	}
	return fmt.Sprintf("Hard Mode violation: Guess must contain letter '%s'.", letter)
}
