// internal/rollout/rollout.go
//
// One episode driven by an agent.
//
// The agent sees the running transcript (system prompt, welcome, then its own
// replies and the environment answers). Only the answer field parsed out of a
// reply reaches the environment; a reply without it is stepped as an empty
// action and costs an invalid move.

package rollout

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/TanmayKhot/hard-wordle-eval/internal/agent"
	"github.com/TanmayKhot/hard-wordle-eval/internal/env"
	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
)

// Record is a finished (or truncated) episode with its scores.
type Record struct {
	ID           string            `json:"id"`
	RunID        string            `json:"runId,omitempty"`
	EnvID        string            `json:"envId"`
	Agent        string            `json:"agent"`
	Answer       string            `json:"answer"`
	Prompt       reward.Transcript `json:"prompt"`
	Completion   reward.Transcript `json:"completion"`
	Won          bool              `json:"won"`
	Truncated    bool              `json:"truncated"`
	Turns        int               `json:"turns"`
	InvalidMoves int               `json:"invalidMoves"`
	EnvReward    float64           `json:"envReward"`
	Scores       reward.Scores     `json:"scores"`
	Duration     time.Duration     `json:"duration"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// MaxTurns is the default step cap for a session: every guess plus every
// tolerated invalid move, plus the move that ends the episode.
func MaxTurns(sess *env.Session) int {
	return sess.Game.MaxGuesses + sess.Game.ErrorAllowance + 1
}

// Run plays sess to the end with a, or until maxTurns replies were made.
// systemPrompt, when set, is shown to the agent as the first message.
func Run(ctx context.Context, sess *env.Session, a agent.Agent, p *reward.Parser, systemPrompt string, maxTurns int) (*Record, error) {
	if maxTurns <= 0 {
		maxTurns = MaxTurns(sess)
	}
	start := time.Now()
	prompt := promptOf(sess, systemPrompt)

	for turn := 0; turn < maxTurns; turn++ {
		view := sess.Snapshot()
		if view.State != "playing" {
			break
		}
		seen := append(append(reward.Transcript(nil), prompt...), view.Transcript[1:]...)
		reply, err := a.Act(ctx, seen)
		if err != nil {
			return nil, fmt.Errorf("agent %s turn %d: %w", a.Name(), turn+1, err)
		}
		action, _ := p.Field(reply, p.AnswerField)
		if _, err := sess.Turn(reply, action); err != nil {
			return nil, fmt.Errorf("step turn %d: %w", turn+1, err)
		}
	}

	rec := Capture(sess, a.Name(), systemPrompt)
	rec.Duration = time.Since(start)
	rec.CreatedAt = start.UTC()
	return rec, nil
}

// Capture snapshots sess as an unscored Record. The first transcript entry
// (the welcome observation) goes to the prompt, the rest is the completion.
func Capture(sess *env.Session, agentName, systemPrompt string) *Record {
	view := sess.Snapshot()
	return &Record{
		ID:           uuid.NewString(),
		EnvID:        sess.EnvID,
		Agent:        agentName,
		Answer:       sess.Game.Secret,
		Prompt:       promptOf(sess, systemPrompt),
		Completion:   view.Transcript[1:],
		Won:          view.State == "won",
		Truncated:    view.State == "playing",
		Turns:        len(view.History),
		InvalidMoves: view.InvalidMoves,
		EnvReward:    view.Reward,
		Duration:     time.Since(sess.CreatedAt),
		CreatedAt:    sess.CreatedAt,
	}
}

func promptOf(sess *env.Session, systemPrompt string) reward.Transcript {
	var prompt reward.Transcript
	if systemPrompt != "" {
		prompt = append(prompt, reward.Message{Role: reward.RoleSystem, Content: systemPrompt})
	}
	return append(prompt, sess.Snapshot().Transcript[0])
}
