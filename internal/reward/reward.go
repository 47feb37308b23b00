// internal/reward/reward.go
//
// Reward functions over an episode transcript. Every function is total:
// malformed or missing input scores 0.0, nothing is returned as an error.

package reward

import (
	"strings"

	"github.com/TanmayKhot/hard-wordle-eval/internal/game"
)

// WelcomeMarker identifies an instruction entry that some front ends record as
// the first assistant message. TurnDiscounted does not count it as a turn.
const WelcomeMarker = "Welcome to Wordle!"

// Partial-credit weights per green and yellow code on the last feedback line.
const (
	GreenCredit  = 0.2
	YellowCredit = 0.1
)

// ExactMatch is 1.0 when the agent's final parsed guess is "[answer]".
func ExactMatch(p *Parser, completion Transcript, answer string) float64 {
	guess, ok := p.ParseAnswer(completion)
	if ok && guess == "["+answer+"]" {
		return 1
	}
	return 0
}

// TurnDiscounted is ExactMatch divided by (agent turns + 1).
func TurnDiscounted(p *Parser, completion Transcript, answer string) float64 {
	assistant := completion.ByRole(RoleAssistant)
	turns := len(assistant)
	// Compatibility shim: some front ends replay the instructions as the
	// first assistant entry.
	if turns > 0 && strings.Contains(assistant[0].Content, WelcomeMarker) {
		turns--
	}
	return ExactMatch(p, completion, answer) / float64(turns+1)
}

// PartialCredit scores the scoring line of the last environment message:
// 0.2 per green plus 0.1 per yellow. Messages without a feedback block, or
// whose block is a single line, score 0.
func PartialCredit(_ *Parser, completion Transcript) float64 {
	users := completion.ByRole(RoleUser)
	if len(users) == 0 {
		return 0
	}
	last := strings.TrimSpace(users[len(users)-1].Content)
	idx := strings.LastIndex(last, game.FeedbackMarker)
	if idx < 0 {
		return 0
	}
	block := strings.TrimSpace(last[idx+len(game.FeedbackMarker):])
	if !strings.Contains(block, "\n") {
		return 0
	}
	lines := strings.Split(block, "\n")
	scoring := strings.TrimSpace(lines[len(lines)-1])
	return GreenCredit*float64(strings.Count(scoring, "G")) + YellowCredit*float64(strings.Count(scoring, "Y"))
}

// Format is the mean, over assistant messages, of the share of the parser's
// fields each message contains. No assistant message scores 0.
func Format(p *Parser, completion Transcript) float64 {
	assistant := completion.ByRole(RoleAssistant)
	if len(assistant) == 0 || len(p.Fields) == 0 {
		return 0
	}
	var total float64
	for _, m := range assistant {
		present := 0
		for _, f := range p.Fields {
			if _, ok := p.Field(m.Content, f); ok {
				present++
			}
		}
		total += float64(present) / float64(len(p.Fields))
	}
	return total / float64(len(assistant))
}
