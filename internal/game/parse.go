// internal/game/parse.go
//
// Extraction of the guessed word from raw agent text.
// Accepts exactly one distinct "[word]" token anywhere in the action;
// repeats of the same token are fine, anything else is a format error.

package game

import (
	"regexp"
	"strings"
)

var bracketRE = regexp.MustCompile(`\[(\w+)\]`)

// ParseGuess extracts the guess from raw agent text. The text must contain a
// bracket pair around a run of word characters, e.g. "[crane]". Several
// distinct bracketed tokens are rejected with ErrAmbiguousGuess; the same
// token repeated is accepted. The returned guess is lowercased.
func ParseGuess(action string) (string, error) {
	matches := bracketRE.FindAllStringSubmatch(action, -1)
	if len(matches) == 0 {
		return "", ErrFormat
	}
	guess := strings.ToLower(matches[0][1])
	for _, m := range matches[1:] {
		if strings.ToLower(m[1]) != guess {
			return "", ErrAmbiguousGuess
		}
	}
	return guess, nil
}
