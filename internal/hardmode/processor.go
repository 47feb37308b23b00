// internal/hardmode/processor.go
//
// Hard-mode turn processor.
//
// Wraps a base game.GuessProcessor (normally game.Engine):
//  1. bracket format and length, through game.Game.Admit;
//  2. green/yellow constraints from the last accepted guess;
//  3. the base processor's dictionary and repeat checks, then scoring.
//
// A violation is an invalid move, recorded on the game like any other.

package hardmode

import (
	"github.com/TanmayKhot/hard-wordle-eval/internal/game"
)

// Processor decorates a base processor with hard-mode checks.
type Processor struct {
	base game.GuessProcessor
}

// Wrap returns base with hard-mode rules in front of it.
func Wrap(base game.GuessProcessor) *Processor {
	return &Processor{base: base}
}

// Process admits the action, then checks and plays the guess.
func (p *Processor) Process(g *game.Game, action string) (game.Result, error) {
	if g.Finished {
		return game.Result{}, game.ErrGameFinished
	}
	guess, res, ok := g.Admit(action)
	if !ok {
		return res, nil
	}
	return p.ProcessGuess(g, guess)
}

// ProcessGuess checks an admitted guess against the constraints and hands it
// to the base processor.
func (p *Processor) ProcessGuess(g *game.Game, guess string) (game.Result, error) {
	if g.Finished {
		return game.Result{}, game.ErrGameFinished
	}
	if err := Derive(g.LastRecord()).Validate(guess); err != nil {
		return g.Reject(err.Error(), err), nil
	}
	return p.base.ProcessGuess(g, guess)
}
