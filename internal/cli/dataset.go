package cli

import (
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/TanmayKhot/hard-wordle-eval/internal/dataset"
	"github.com/TanmayKhot/hard-wordle-eval/internal/env"
)

func (a *App) newDatasetCmd() *cobra.Command {
	var (
		outDir      string
		envID       string
		train, eval int
		seed        int64
	)
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Write train.jsonl and eval.jsonl episode lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.setup()
			if err != nil {
				return err
			}
			if envID == "" {
				envID = rt.cfg.Env.ID
			}
			spec, ok := rt.registry.Spec(envID)
			if !ok {
				return fmt.Errorf("%w: %s", env.ErrUnknownEnv, envID)
			}
			if !cmd.Flags().Changed("train") {
				train = rt.cfg.Dataset.Train
			}
			if !cmd.Flags().Changed("eval") {
				eval = rt.cfg.Dataset.Eval
			}
			if !cmd.Flags().Changed("seed") {
				seed = rt.cfg.Dataset.Seed
			}

			question := env.Welcome(spec.Config, spec.Hard)
			trainRows, evalRows := dataset.Generate(rt.picker, question, train, eval, seed)
			for name, rows := range map[string][]dataset.Row{"train.jsonl": trainRows, "eval.jsonl": evalRows} {
				if len(rows) == 0 {
					continue
				}
				path := filepath.Join(outDir, name)
				if err := dataset.WriteFile(path, rows); err != nil {
					return err
				}
				log.Info().Str("path", path).Int("rows", len(rows)).Msg("dataset written")
			}
			fmt.Fprintf(a.stdout, "%d train / %d eval rows in %s\n", len(trainRows), len(evalRows), outDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "data", "output directory")
	cmd.Flags().StringVarP(&envID, "env", "e", "", "environment id (default from config)")
	cmd.Flags().IntVar(&train, "train", 0, "train rows (default from config)")
	cmd.Flags().IntVar(&eval, "eval", 0, "eval rows (default from config)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "secret seed (default from config)")
	return cmd
}
