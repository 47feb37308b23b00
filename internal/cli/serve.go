package cli

import (
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/TanmayKhot/hard-wordle-eval/internal/httpserver"
	"github.com/TanmayKhot/hard-wordle-eval/internal/results"
	"github.com/TanmayKhot/hard-wordle-eval/internal/store"
)

func (a *App) newServeCmd() *cobra.Command {
	var noDB bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve environments over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := a.setup()
			if err != nil {
				return err
			}
			sc := rt.cfg.Server

			var res *results.Store
			if !noDB && sc.DBPath != "" {
				res, err = results.Open(sc.DBPath)
				if err != nil {
					return err
				}
				defer res.Close()
			}
			if sc.JWTSecret == "" {
				log.Warn().Msg("JWT_SECRET not set; environment endpoints are unauthenticated")
			}

			srv := httpserver.New(httpserver.Deps{
				Registry:     rt.registry,
				Sessions:     store.NewMemoryStore(),
				Results:      res,
				Rubric:       rt.rubric,
				Picker:       rt.picker,
				SystemPrompt: rt.prompt,
			}, httpserver.Options{
				DefaultEnv:       rt.cfg.Env.ID,
				ClientOrigin:     sc.ClientOrigin,
				JWTSecret:        sc.JWTSecret,
				JWTExpires:       time.Duration(sc.JWTExpiresHours) * time.Hour,
				ClientID:         sc.ClientID,
				ClientSecretHash: sc.ClientSecretHash,
				SessionTTL:       sc.SessionTTL,
			})
			log.Info().Str("port", sc.Port).Str("env", rt.cfg.Env.ID).Msg("starting server")
			return srv.Start(cmd.Context(), ":"+sc.Port)
		},
	}
	cmd.Flags().BoolVar(&noDB, "no-db", false, "do not persist finished episodes")
	return cmd
}
