package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
)

func (a *App) newScoreCmd() *cobra.Command {
	var answer string
	cmd := &cobra.Command{
		Use:   "score [transcript.json]",
		Short: "Score a completion transcript with the rubric",
		Long: `Score a completion (a JSON array of {"role","content"} messages) against
an answer. The transcript is read from the file argument or from stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if answer == "" {
				return fmt.Errorf("--answer is required")
			}
			rt, err := a.setup()
			if err != nil {
				return err
			}
			var in io.Reader = a.stdin
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			var completion reward.Transcript
			if err := json.NewDecoder(in).Decode(&completion); err != nil {
				return fmt.Errorf("failed to parse transcript: %w", err)
			}
			scores := rt.rubric.Score(completion, strings.ToLower(strings.TrimSpace(answer)))
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(scores)
		},
	}
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "secret word the completion is scored against")
	return cmd
}
