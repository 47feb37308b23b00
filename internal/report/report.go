// internal/report/report.go
//
// Plain-text evaluation report: one section block per rollout followed by a
// raw JSON dump, the format trainers skim after an eval run.

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
	"github.com/TanmayKhot/hard-wordle-eval/internal/rollout"
)

var (
	rule = strings.Repeat("=", 80)
	sub  = strings.Repeat("-", 40)
)

// Write renders the summary and every record to w.
func Write(w io.Writer, sum rollout.Summary, recs []*rollout.Record) error {
	ew := &errWriter{w: w}
	ew.printf("%s\nHARD MODE WORDLE ENVIRONMENT EVALUATION RESULTS\n%s\n\n", rule, rule)

	section(ew, "SUMMARY")
	ew.printf("env: %s\nrun: %s\nepisodes: %d\nwins: %d\nwin rate: %.4f\nmean reward: %.4f\nmean turns: %.2f\ninvalid moves: %d\n\n",
		sum.EnvID, sum.RunID, sum.Episodes, sum.Wins, sum.WinRate, sum.MeanReward, sum.MeanTurns, sum.InvalidMoves)

	for i, rec := range recs {
		ew.printf("%s\nROLLOUT %d (%s)\n%s\n\n", rule, i+1, rec.ID, rule)
		section(ew, "PROMPT")
		messages(ew, rec.Prompt)
		section(ew, "COMPLETION")
		messages(ew, rec.Completion)
		section(ew, "ANSWER")
		ew.printf("%s\n\n", rec.Answer)
		section(ew, "REWARD")
		ew.printf("%.4f\n\n", rec.Scores.Total)
		section(ew, "METRICS")
		names := make([]string, 0, len(rec.Scores.Rewards))
		for k := range rec.Scores.Rewards {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			ew.printf("%s: %v\n", k, rec.Scores.Rewards[k])
		}
		ew.printf("\n")
		section(ew, "ADDITIONAL INFO")
		ew.printf("agent: %s\nwon: %t\nturns: %d\ninvalid moves: %d\nenv reward: %v\ntruncated: %t\nduration: %s\n\n",
			rec.Agent, rec.Won, rec.Turns, rec.InvalidMoves, rec.EnvReward, rec.Truncated, rec.Duration)
	}

	section(ew, "RAW RESULTS (JSON)")
	raw, err := json.MarshalIndent(struct {
		Summary  rollout.Summary   `json:"summary"`
		Rollouts []*rollout.Record `json:"rollouts"`
	}{sum, recs}, "", "  ")
	if err != nil {
		ew.printf("Could not serialize results: %v\n", err)
	} else {
		ew.printf("%s\n", raw)
	}
	return ew.err
}

// WriteFile writes the report to path.
func WriteFile(path string, sum rollout.Summary, recs []*rollout.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, sum, recs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func section(ew *errWriter, title string) {
	ew.printf("%s:\n%s\n", title, sub)
}

func messages(ew *errWriter, t reward.Transcript) {
	for i, m := range t {
		ew.printf("Message %d (%s):\n%s\n\n", i+1, m.Role, m.Content)
	}
	ew.printf("\n")
}

// errWriter keeps the first write error and skips later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
