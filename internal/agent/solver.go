// internal/agent/solver.go
//
// Reference solver. Keeps the answers consistent with every observed
// feedback line; such a candidate always satisfies hard mode.

package agent

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/TanmayKhot/hard-wordle-eval/internal/game"
	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
)

// maxRanked bounds how many candidates are ranked by partition size; above it
// the solver takes a random consistent candidate.
const maxRanked = 250

// Solver is the reference player. It keeps only candidates consistent with
// every observed feedback line, so each guess it makes is also legal in hard
// mode.
type Solver struct {
	Words  []string // candidate secrets
	Opener string   // first guess; empty picks from Words
	Think  bool     // wrap reasoning in <think>

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSolver returns a solver over words seeded for reproducible play.
func NewSolver(words []string, seed int64, think bool) *Solver {
	return &Solver{Words: words, Think: think, rng: rand.New(rand.NewSource(seed))}
}

func (s *Solver) Name() string { return "solver" }

// Candidates returns the words consistent with history.
func (s *Solver) Candidates(history []game.GuessRecord) []string {
	var out []string
	for _, w := range s.Words {
		if consistent(w, history) {
			out = append(out, w)
		}
	}
	return out
}

func consistent(candidate string, history []game.GuessRecord) bool {
	for _, rec := range history {
		if len(candidate) != len(rec.Word) {
			return false
		}
		if !slices.Equal(game.Score(candidate, rec.Word), rec.Feedback) {
			return false
		}
	}
	return true
}

func (s *Solver) Act(ctx context.Context, t reward.Transcript) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	history := Observed(t)
	if len(history) == 0 && s.Opener != "" {
		return s.reply(fmt.Sprintf("No feedback yet, opening with %s.", s.Opener), s.Opener), nil
	}

	cands := s.Candidates(history)
	guessed := make([]string, 0, len(history))
	for _, rec := range history {
		guessed = append(guessed, rec.Word)
	}
	cands = slices.DeleteFunc(cands, func(w string) bool { return slices.Contains(guessed, w) })
	if len(cands) == 0 {
		return s.reply("No candidate fits the feedback.", ""), nil
	}

	word := s.pick(cands)
	return s.reply(fmt.Sprintf("%d candidates fit the feedback so far, trying %s.", len(cands), word), word), nil
}

// pick prefers the candidate that splits the rest into the most feedback
// patterns.
func (s *Solver) pick(cands []string) string {
	if len(cands) > maxRanked {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.rng == nil {
			s.rng = rand.New(rand.NewSource(1))
		}
		return cands[s.rng.Intn(len(cands))]
	}
	best, bestN := cands[0], -1
	for _, g := range cands {
		parts := make(map[string]struct{}, len(cands))
		for _, answer := range cands {
			parts[game.Score(answer, g).String()] = struct{}{}
		}
		if len(parts) > bestN {
			best, bestN = g, len(parts)
		}
	}
	return best
}

func (s *Solver) reply(thought, word string) string {
	if !s.Think {
		return Reply("", word)
	}
	return Reply(thought, word)
}
