// internal/agent/agent.go
//
// Agents play episodes by replying to the running transcript.
//
// A reply is free text; the rollout loop extracts the <guess> field from it
// and hands that to the environment. Agents never see the secret.

package agent

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/TanmayKhot/hard-wordle-eval/internal/game"
	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
)

// ErrNoMoreReplies is returned by Scripted when its replies run out.
var ErrNoMoreReplies = errors.New("agent: no more scripted replies")

// Agent produces the next reply for a transcript.
type Agent interface {
	Name() string
	Act(ctx context.Context, t reward.Transcript) (string, error)
}

var submittedRe = regexp.MustCompile(`You submitted \[([A-Za-z]+)\]\.`)

// Observed reconstructs the accepted guesses and their feedback from the
// environment messages of t.
func Observed(t reward.Transcript) []game.GuessRecord {
	var out []game.GuessRecord
	for _, m := range t.ByRole(reward.RoleUser) {
		sub := submittedRe.FindStringSubmatch(m.Content)
		idx := strings.LastIndex(m.Content, game.FeedbackMarker)
		if sub == nil || idx < 0 {
			continue
		}
		lines := strings.Split(strings.TrimSpace(m.Content[idx+len(game.FeedbackMarker):]), "\n")
		fb := game.ParseFeedback(lines[len(lines)-1])
		word := strings.ToLower(sub[1])
		if len(fb) != len(word) {
			continue
		}
		out = append(out, game.GuessRecord{Word: word, Feedback: fb})
	}
	return out
}

// Reply formats a guess the way agents are asked to answer.
func Reply(think, word string) string {
	if think == "" {
		return fmt.Sprintf("<guess>[%s]</guess>", word)
	}
	return fmt.Sprintf("<think>%s</think>\n<guess>[%s]</guess>", think, word)
}

// Scripted replays a fixed list of replies.
type Scripted struct {
	Replies []string
	next    int
}

func (s *Scripted) Name() string { return "scripted" }

func (s *Scripted) Act(ctx context.Context, _ reward.Transcript) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.next >= len(s.Replies) {
		return "", ErrNoMoreReplies
	}
	r := s.Replies[s.next]
	s.next++
	return r, nil
}

// Human prints each environment message to Out and reads one guess per line
// from In. A bare word is wrapped in the reply format.
type Human struct {
	In  *bufio.Reader
	Out io.Writer
}

// NewHuman wires a Human to the given streams.
func NewHuman(in io.Reader, out io.Writer) *Human {
	return &Human{In: bufio.NewReader(in), Out: out}
}

func (h *Human) Name() string { return "human" }

func (h *Human) Act(ctx context.Context, t reward.Transcript) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(t) > 0 {
		fmt.Fprintln(h.Out, t[len(t)-1].Content)
	}
	fmt.Fprint(h.Out, "> ")
	line, err := h.In.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	line = strings.TrimSpace(line)
	if strings.Contains(line, "<guess>") {
		return line, nil
	}
	line = strings.Trim(line, "[]")
	return Reply("", line), nil
}
