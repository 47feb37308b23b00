// internal/game/engine.go
//
// Base game mechanics for a single Wordle episode.
// Responsibilities:
//   - Create episodes with configurable dimensions (default 6 guesses × 5 letters).
//   - Validate guesses (bracket format, length, dictionary, repeats).
//   - Score guesses using the classic two-pass Wordle algorithm.
//   - Track transitions: playing → won / exhausted, and the invalid-move budget.
//
// Notes:
//   - Engine is the plain Processor; hard mode is layered on top by wrapping it
//     (see internal/hardmode).
//   - Core code never logs; everything is reported through Result.

package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	defaultGuesses   = 6
	defaultLength    = 5
	defaultAllowance = 1
)

// Processor turns one raw agent action into a Result for the given episode.
// It returns an error only for caller bugs such as stepping a finished game;
// malformed agent input is always reported through Result.
type Processor interface {
	Process(g *Game, action string) (Result, error)
}

// GuessProcessor also accepts a guess that already passed Admit, so that a
// decorator can hand its parsed guess down without a second parse.
type GuessProcessor interface {
	Processor
	ProcessGuess(g *Game, guess string) (Result, error)
}

// Config sets the dimensions of a new episode.
type Config struct {
	WordLength     int `json:"wordLength" yaml:"word_length"`
	MaxGuesses     int `json:"maxGuesses" yaml:"max_guesses"`
	ErrorAllowance int `json:"errorAllowance" yaml:"error_allowance"`
}

// DefaultConfig is the classic 6×5 board with a single tolerated invalid move.
func DefaultConfig() Config {
	return Config{WordLength: defaultLength, MaxGuesses: defaultGuesses, ErrorAllowance: defaultAllowance}
}

// withDefaults fills zero dimensions. A zero ErrorAllowance is kept as is.
func (c Config) withDefaults() Config {
	if c.WordLength <= 0 {
		c.WordLength = defaultLength
	}
	if c.MaxGuesses <= 0 {
		c.MaxGuesses = defaultGuesses
	}
	if c.ErrorAllowance < 0 {
		c.ErrorAllowance = 0
	}
	return c
}

// New constructs an episode for the given secret.
func New(secret string, cfg Config) *Game {
	cfg = cfg.withDefaults()
	return &Game{
		ID:             randomID(),
		Secret:         strings.ToLower(secret),
		WordLength:     cfg.WordLength,
		MaxGuesses:     cfg.MaxGuesses,
		ErrorAllowance: cfg.ErrorAllowance,
		History:        []GuessRecord{},
	}
}

// Dictionary is the word-membership check the engine needs.
type Dictionary interface {
	IsAllowed(word string) bool
}

// Engine implements the standard (non hard-mode) rules.
type Engine struct {
	dict Dictionary
}

// NewEngine returns the base processor. A nil dictionary accepts every word.
func NewEngine(dict Dictionary) *Engine {
	return &Engine{dict: dict}
}

// Process validates and scores a guess, mutating the episode.
//
// Validation order:
//   - Guess must be bracketed: "[word]".
//   - Guess must be exactly g.WordLength letters.
//   - Guess must be in the dictionary and not already guessed.
//
// State transitions:
//   - All tiles green → Finished, Won, reward 1.
//   - Else history reaches g.MaxGuesses → Finished (exhausted), reward = completion.
//   - Invalid moves beyond g.ErrorAllowance → Finished (exhausted).
func (e *Engine) Process(g *Game, action string) (Result, error) {
	if g.Finished {
		return Result{}, ErrGameFinished
	}
	guess, res, ok := g.Admit(action)
	if !ok {
		return res, nil
	}
	return e.ProcessGuess(g, guess)
}

// ProcessGuess applies the dictionary and repeat checks to an admitted guess
// and scores it.
func (e *Engine) ProcessGuess(g *Game, guess string) (Result, error) {
	if g.Finished {
		return Result{}, ErrGameFinished
	}
	if e.dict != nil && !e.dict.IsAllowed(guess) {
		return g.Reject(fmt.Sprintf("'%s' is not an English word.", guess), fmt.Errorf("%w: %q", ErrUnknownWord, guess)), nil
	}
	for _, rec := range g.History {
		if rec.Word == guess {
			return g.Reject(fmt.Sprintf("You have already guessed '%s'. Please try a different word.", guess),
				fmt.Errorf("%w: %q", ErrRepeatedGuess, guess)), nil
		}
	}

	rec := GuessRecord{Word: guess, Feedback: Score(g.Secret, guess)}
	g.History = append(g.History, rec)

	if guess == g.Secret {
		reason := "Congratulations! You guessed the word correctly!"
		g.finish(true, 1, reason)
		return Result{
			Done:    true,
			Outcome: Outcome{Kind: OutcomeWin, Reason: reason},
			Message: reason + "\n" + submitted(rec) + "\n" + FeedbackBlock(rec),
			Reward:  1,
		}, nil
	}
	if len(g.History) >= g.MaxGuesses {
		completion := g.PercentageCompletion()
		reason := fmt.Sprintf("The turn limit has been reached. You didn't guess the word, but your percentage completion is %.0f%%.", completion*100)
		g.finish(false, completion, reason)
		return Result{
			Done:    true,
			Outcome: Outcome{Kind: OutcomeExhausted, Reason: reason},
			Message: reason + "\n" + submitted(rec) + "\n" + FeedbackBlock(rec),
			Reward:  completion,
		}, nil
	}
	return Result{
		Outcome: Outcome{Kind: OutcomeContinue},
		Message: fmt.Sprintf("%s You have %d guesses left.\n%s", submitted(rec), g.GuessesLeft(), FeedbackBlock(rec)),
	}, nil
}

// Admit parses action and applies the bracket-format and length rules every
// processor shares. When the move is rejected ok is false and res holds the
// recorded rejection.
func (g *Game) Admit(action string) (guess string, res Result, ok bool) {
	guess, err := ParseGuess(action)
	if err != nil {
		return "", g.Reject(FormatReason(err), err), false
	}
	if len(guess) != g.WordLength {
		return "", g.Reject(LengthReason(g.WordLength), &LengthError{Want: g.WordLength, Got: len(guess)}), false
	}
	return guess, Result{}, true
}

// Reject records an invalid move. The episode continues, paying the
// percentage-completion reward, until the invalid-move allowance is exceeded.
// History is never touched.
func (g *Game) Reject(reason string, cause error) Result {
	g.InvalidMoves++
	completion := g.PercentageCompletion()
	if g.InvalidMoves > g.ErrorAllowance {
		final := "Too many invalid moves. " + reason
		g.finish(false, completion, final)
		return Result{
			Done:    true,
			Outcome: Outcome{Kind: OutcomeExhausted, Reason: final, Err: cause},
			Message: final,
			Reward:  completion,
		}
	}
	return Result{
		Outcome: Outcome{Kind: OutcomeInvalidMove, Reason: reason, Err: cause},
		Message: reason,
		Reward:  completion,
	}
}

func (g *Game) finish(won bool, reward float64, reason string) {
	g.Finished, g.Won = true, won
	g.FinalReward, g.FinalReason = reward, reason
}

// FormatReason is the user-facing text for a bracket-format failure.
func FormatReason(err error) string {
	if errors.Is(err, ErrAmbiguousGuess) {
		return "You tried submitting a word in the wrong format. Please submit exactly one word in squared brackets."
	}
	return "You tried submitting a word in the wrong format. Please make sure to use squared brackets."
}

// LengthReason is the user-facing text for a wrong-length guess.
func LengthReason(n int) string {
	return fmt.Sprintf("Your word must be exactly %d letters.", n)
}

// Score implements the standard Wordle two-pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches green.
//   - Count the remaining (non-green) secret letters.
//
// Pass 2:
//   - For each non-green guess letter: if there is remaining count for that
//     letter, mark yellow and decrement the count; otherwise mark absent.
//
// This keeps green+yellow for any letter within its count in the secret.
// The feedback has one mark per guess letter. Callers pass equal-length words;
// if the secret is shorter, guess positions past its end are never green.
func Score(secret, guess string) Feedback {
	n := len(guess)
	res := make(Feedback, n)

	// Letter frequency for the non-green positions.
	counts := make(map[byte]int, n)

	// First pass: mark greens and collect counts for remaining secret letters.
	for i := 0; i < n; i++ {
		if i < len(secret) && guess[i] == secret[i] {
			res[i] = MarkGreen
		} else if i < len(secret) {
			counts[secret[i]]++
		}
	}

	// Second pass: resolve yellows/absents for non-green tiles.
	for i := 0; i < n; i++ {
		if res[i] == MarkGreen {
			continue
		}
		if c := guess[i]; counts[c] > 0 {
			res[i] = MarkYellow
			counts[c]--
		} else {
			res[i] = MarkAbsent
		}
	}
	return res
}

// randomID returns a compact 16‑hex‑char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
