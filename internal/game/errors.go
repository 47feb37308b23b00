// internal/game/errors.go
//
// Error values for the rule engine. Invalid-move causes travel inside
// Outcome.Err; only ErrGameFinished is returned to callers.

package game

import (
	"errors"
	"fmt"
)

// Invalid-move causes. All of them are recoverable: the processor turns them
// into an InvalidMove outcome instead of returning them.
var (
	ErrFormat         = errors.New("guess is not wrapped in square brackets")
	ErrAmbiguousGuess = errors.New("more than one bracketed guess")
	ErrUnknownWord    = errors.New("word not in dictionary")
	ErrRepeatedGuess  = errors.New("word already guessed")
)

// ErrGameFinished is returned, as an error, when a finished episode is stepped.
var ErrGameFinished = errors.New("game finished")

// LengthError reports a guess of the wrong length.
type LengthError struct {
	Want int
	Got  int
}

func (e *LengthError) Error() string {
	return fmt.Sprintf("word has %d letters, want %d", e.Got, e.Want)
}
