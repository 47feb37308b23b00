package env

import (
	"fmt"
	"strings"

	"github.com/TanmayKhot/hard-wordle-eval/internal/game"
)

const thinkSystemPrompt = `You are a competitive game player. Make sure you read the game instructions carefully, and always follow the required format.
Remember that from the second turn onwards, you must use all the green and yellow letters identified in the previous round
If the previous round had green letters then your current guess must have the same letters in the same position.
If the previous round had yellow letters then your current guess must contain those letters.

In each turn, think step-by-step inside <think>...</think> tags, then follow the instructions inside <guess>...</guess> tags.`

const noThinkSystemPrompt = `You are a competitive game player. Make sure you read the game instructions carefully, and always follow the required format.
If the previous round had green letters then your current guess must have the same letters in the same position.
If the previous round had yellow letters then your current guess must contain those letters.

In each turn, give only your guess inside <guess>...</guess> tags.`

// SystemPrompt returns the agent system prompt for the think or no-think variant.
func SystemPrompt(think bool) string {
	if think {
		return thinkSystemPrompt
	}
	return noThinkSystemPrompt
}

// Welcome is the first environment observation of an episode.
func Welcome(cfg game.Config, hard bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Welcome to Wordle! A secret %d-letter word has been chosen. You have %d attempts to guess it.\n",
		cfg.WordLength, cfg.MaxGuesses)
	b.WriteString("For each guess, wrap your word in square brackets (e.g., [apple]).\n")
	b.WriteString("Feedback for each letter will be given as follows:\n")
	b.WriteString("  - G (green): correct letter in the correct position\n")
	b.WriteString("  - Y (yellow): letter exists in the word but in the wrong position\n")
	b.WriteString("  - X (wrong): letter is not in the word\n")
	if hard {
		b.WriteString("Hard mode is on: letters marked G in your previous guess must stay in the same position, ")
		b.WriteString("and letters marked Y must appear somewhere in your next guess.\n")
	}
	b.WriteString("Enjoy!")
	return b.String()
}
