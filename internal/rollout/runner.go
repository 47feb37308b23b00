// internal/rollout/runner.go
//
// Batch evaluation: a bounded errgroup pool plays one episode per task,
// scores it with the rubric and hands it to the Sink. Records come back in
// task order together with a Summary.

package rollout

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"

	"github.com/TanmayKhot/hard-wordle-eval/internal/agent"
	"github.com/TanmayKhot/hard-wordle-eval/internal/env"
	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
)

// Task is one episode to evaluate.
type Task struct {
	Index  int
	Secret string
}

// Sink receives scored records. Failures are logged and do not stop a run.
type Sink interface {
	Save(ctx context.Context, rec *Record) error
}

// Runner evaluates a batch of tasks on a bounded worker pool.
type Runner struct {
	Registry     *env.Registry
	EnvID        string
	NewAgent     func(task Task) agent.Agent
	Rubric       *reward.Rubric
	SystemPrompt string
	Workers      int
	Sink         Sink
	Progress     bool
}

// Summary aggregates a run.
type Summary struct {
	RunID        string  `json:"runId"`
	EnvID        string  `json:"envId"`
	Episodes     int     `json:"episodes"`
	Wins         int     `json:"wins"`
	WinRate      float64 `json:"winRate"`
	MeanReward   float64 `json:"meanReward"`
	MeanTurns    float64 `json:"meanTurns"`
	InvalidMoves int     `json:"invalidMoves"`
}

// Run plays every task and returns the records in task order.
func (r *Runner) Run(ctx context.Context, tasks []Task) ([]*Record, Summary, error) {
	runID := uuid.NewString()
	workers := r.Workers
	if workers <= 0 {
		workers = 4
	}

	var bar *progressbar.ProgressBar
	if r.Progress {
		bar = progressbar.Default(int64(len(tasks)), "evaluating "+r.EnvID)
	} else {
		bar = progressbar.DefaultSilent(int64(len(tasks)))
	}

	records := make([]*Record, len(tasks))
	var mu sync.Mutex
	wins := 0

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, task := range tasks {
		i, task := i, task
		g.Go(func() error {
			sess, err := r.Registry.Make(r.EnvID, env.Options{Secret: task.Secret})
			if err != nil {
				return fmt.Errorf("task %d: %w", task.Index, err)
			}
			rec, err := Run(ctx, sess, r.NewAgent(task), r.Rubric.Parser, r.SystemPrompt, 0)
			if err != nil {
				return fmt.Errorf("task %d: %w", task.Index, err)
			}
			rec.RunID = runID
			rec.Scores = r.Rubric.Score(rec.Completion, rec.Answer)
			records[i] = rec

			if r.Sink != nil {
				if err := r.Sink.Save(ctx, rec); err != nil {
					log.Warn().Err(err).Str("rollout", rec.ID).Msg("failed to store rollout")
				}
			}
			mu.Lock()
			if rec.Won {
				wins++
				bar.Describe(fmt.Sprintf("evaluating %s (%d won)", r.EnvID, wins))
			}
			mu.Unlock()
			_ = bar.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}
	_ = bar.Finish()
	return records, Summarize(runID, r.EnvID, records), nil
}

// Summarize computes the aggregate of records.
func Summarize(runID, envID string, records []*Record) Summary {
	s := Summary{RunID: runID, EnvID: envID, Episodes: len(records)}
	if len(records) == 0 {
		return s
	}
	var total, turns float64
	for _, rec := range records {
		if rec.Won {
			s.Wins++
		}
		total += rec.Scores.Total
		turns += float64(rec.Turns)
		s.InvalidMoves += rec.InvalidMoves
	}
	n := float64(len(records))
	s.WinRate = float64(s.Wins) / n
	s.MeanReward = total / n
	s.MeanTurns = turns / n
	return s
}
