package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/TanmayKhot/hard-wordle-eval/internal/cli"
)

func main() {
	if err := cli.New().Execute(context.Background()); err != nil {
		log.Error().Err(err).Msg("hard-wordle failed")
		os.Exit(1)
	}
}
