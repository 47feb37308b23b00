package cli

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/TanmayKhot/hard-wordle-eval/internal/agent"
	"github.com/TanmayKhot/hard-wordle-eval/internal/dataset"
	"github.com/TanmayKhot/hard-wordle-eval/internal/report"
	"github.com/TanmayKhot/hard-wordle-eval/internal/results"
	"github.com/TanmayKhot/hard-wordle-eval/internal/rollout"
)

type evalOptions struct {
	envID       string
	episodes    int
	seed        int64
	datasetPath string
	agentKind   string
	workers     int
	reportPath  string
	noDB        bool
	jsonOutput  bool
}

func (a *App) newEvalCmd() *cobra.Command {
	opts := &evalOptions{}
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate an agent on a batch of episodes",
		Long: `Evaluate an agent on a batch of episodes and score each with the rubric.

Examples:
  # 20 episodes of the reference solver, secrets from seed 7
  hard-wordle eval -n 20 --seed 7

  # Episodes from a dataset file, played by a chat model
  LLM_API_KEY=... hard-wordle eval --dataset eval.jsonl --agent chat`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runEval(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.envID, "env", "e", "", "environment id (default from config)")
	cmd.Flags().IntVarP(&opts.episodes, "episodes", "n", 0, "number of episodes (default: dataset eval size)")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "secret seed (default from config)")
	cmd.Flags().StringVar(&opts.datasetPath, "dataset", "", "JSONL dataset to take answers from")
	cmd.Flags().StringVar(&opts.agentKind, "agent", "", "solver or chat (default from config)")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "parallel episodes (default from config)")
	cmd.Flags().StringVarP(&opts.reportPath, "report", "o", "", "report file (default from config)")
	cmd.Flags().BoolVar(&opts.noDB, "no-db", false, "do not store rollouts")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print the summary as JSON")
	return cmd
}

func (a *App) runEval(cmd *cobra.Command, opts *evalOptions) error {
	rt, err := a.setup()
	if err != nil {
		return err
	}
	cfg := rt.cfg
	if opts.envID == "" {
		opts.envID = cfg.Env.ID
	}
	if opts.agentKind == "" {
		opts.agentKind = cfg.Eval.Agent
	}
	if opts.workers <= 0 {
		opts.workers = cfg.Eval.Workers
	}
	if opts.reportPath == "" {
		opts.reportPath = cfg.Eval.ReportPath
	}
	if !cmd.Flags().Changed("seed") {
		opts.seed = cfg.Dataset.Seed
	}

	tasks, err := a.evalTasks(rt, opts)
	if err != nil {
		return err
	}

	var newAgent func(rollout.Task) agent.Agent
	switch opts.agentKind {
	case "solver":
		answers := rt.dict.Answers()
		newAgent = func(t rollout.Task) agent.Agent {
			return agent.NewSolver(answers, opts.seed+int64(t.Index), cfg.Env.Think)
		}
	case "chat":
		if cfg.Eval.Chat.APIKey == "" {
			log.Warn().Msg("LLM_API_KEY not set; requests go out unauthenticated")
		}
		chat := agent.NewChat(cfg.Eval.Chat)
		newAgent = func(rollout.Task) agent.Agent { return chat }
	default:
		return fmt.Errorf("unknown agent %q (want solver or chat)", opts.agentKind)
	}

	runner := &rollout.Runner{
		Registry:     rt.registry,
		EnvID:        opts.envID,
		NewAgent:     newAgent,
		Rubric:       rt.rubric,
		SystemPrompt: rt.prompt,
		Workers:      opts.workers,
		Progress:     true,
	}
	if !opts.noDB && cfg.Server.DBPath != "" {
		res, err := results.Open(cfg.Server.DBPath)
		if err != nil {
			return err
		}
		defer res.Close()
		runner.Sink = res
	}

	recs, sum, err := runner.Run(cmd.Context(), tasks)
	if err != nil {
		return err
	}
	if opts.reportPath != "" && opts.reportPath != "-" {
		if err := report.WriteFile(opts.reportPath, sum, recs); err != nil {
			return err
		}
		log.Info().Str("path", opts.reportPath).Msg("results written")
	}

	if opts.jsonOutput {
		enc := json.NewEncoder(a.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	fmt.Fprintf(a.stdout, "%s: %d episodes, win rate %.3f, mean reward %.4f, mean turns %.2f, invalid moves %d\n",
		sum.EnvID, sum.Episodes, sum.WinRate, sum.MeanReward, sum.MeanTurns, sum.InvalidMoves)
	return nil
}

// evalTasks reads answers from the dataset file, or picks them from the seed.
func (a *App) evalTasks(rt *runtime, opts *evalOptions) ([]rollout.Task, error) {
	if opts.datasetPath != "" {
		rows, err := dataset.ReadFile(opts.datasetPath)
		if err != nil {
			return nil, err
		}
		if opts.episodes > 0 && opts.episodes < len(rows) {
			rows = rows[:opts.episodes]
		}
		tasks := make([]rollout.Task, len(rows))
		for i, r := range rows {
			tasks[i] = rollout.Task{Index: i, Secret: r.Answer}
		}
		return tasks, nil
	}
	n := opts.episodes
	if n <= 0 {
		n = rt.cfg.Dataset.Eval
	}
	tasks := make([]rollout.Task, n)
	for i := range tasks {
		tasks[i] = rollout.Task{Index: i, Secret: rt.picker.Pick(opts.seed, i)}
	}
	return tasks, nil
}
