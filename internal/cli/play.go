package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/TanmayKhot/hard-wordle-eval/internal/agent"
	"github.com/TanmayKhot/hard-wordle-eval/internal/env"
	"github.com/TanmayKhot/hard-wordle-eval/internal/rollout"
)

func (a *App) newPlayCmd() *cobra.Command {
	var (
		envID  string
		secret string
		solver bool
		seed   int64
	)
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play one episode in the terminal",
		Long: `Play one episode in the terminal. Type a word per turn; it is wrapped as
<guess>[word]</guess> for you. With --solver the reference solver plays instead
and every turn is printed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.setup()
			if err != nil {
				return err
			}
			if envID == "" {
				envID = rt.cfg.Env.ID
			}
			sess, err := rt.registry.Make(envID, env.Options{Secret: secret})
			if err != nil {
				return err
			}

			var ag agent.Agent = agent.NewHuman(a.stdin, a.stdout)
			if solver {
				ag = agent.NewSolver(rt.dict.Answers(), seed, rt.cfg.Env.Think)
			}
			rec, err := rollout.Run(cmd.Context(), sess, ag, rt.parser, "", 0)
			if err != nil {
				return err
			}
			if solver {
				for _, m := range rec.Completion {
					fmt.Fprintf(a.stdout, "[%s] %s\n", m.Role, m.Content)
				}
			} else if n := len(rec.Completion); n > 0 {
				fmt.Fprintln(a.stdout, rec.Completion[n-1].Content)
			}
			scores := rt.rubric.Score(rec.Completion, rec.Answer)
			fmt.Fprintf(a.stdout, "\nanswer: %s  won: %t  turns: %d  invalid: %d  reward: %.3f\n",
				rec.Answer, rec.Won, rec.Turns, rec.InvalidMoves, scores.Total)
			return nil
		},
	}
	cmd.Flags().StringVarP(&envID, "env", "e", "", "environment id (default from config)")
	cmd.Flags().StringVar(&secret, "secret", "", "fix the secret word")
	cmd.Flags().BoolVar(&solver, "solver", false, "let the reference solver play")
	cmd.Flags().Int64Var(&seed, "seed", 1, "solver seed")
	return cmd
}
