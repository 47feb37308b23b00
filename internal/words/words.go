// internal/words/words.go
//
// Word list management for the environment.
//
// Responsibilities:
//   - Load answer and allowed guess lists from files or fall back to the
//     embedded assets.
//   - Keep sets for quick lookups (answers only, answers ∪ guesses).
//   - Supply Random, At, IsAllowed, IsAnswer and Stats.
//
// Word lists:
//   - "answers": secrets an episode may pick.
//   - "allowed": valid guesses (always includes answers).
//
// Load behavior:
//  1. answers and allowed paths set → read both files.
//  2. only allowed path set → that file serves as both lists.
//  3. neither set → embedded assets.
//
// A Dictionary is built once at process start and only read afterwards, so it
// is shared freely between concurrently running episodes.

package words

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/TanmayKhot/hard-wordle-eval/assets"
)

// DefaultLength is the word length of the embedded lists.
const DefaultLength = 5

// ErrEmpty is returned when no answer survives filtering.
var ErrEmpty = errors.New("words: answers list is empty")

// Dictionary is an immutable pair of answer/allowed lists for one word length.
type Dictionary struct {
	length     int
	answers    []string
	answersSet map[string]struct{}
	allowedSet map[string]struct{}
}

// New builds a Dictionary from raw lists. Words are lowercased and anything
// that is not exactly length letters a–z is dropped.
func New(answers, allowed []string, length int) (*Dictionary, error) {
	if length <= 0 {
		length = DefaultLength
	}
	ans := normalize(answers, length)
	if len(ans) == 0 {
		return nil, ErrEmpty
	}
	d := &Dictionary{
		length:     length,
		answers:    ans,
		answersSet: toSet(ans),
		allowedSet: toSet(ans),
	}
	for _, w := range normalize(allowed, length) {
		d.allowedSet[w] = struct{}{}
	}
	return d, nil
}

// Load reads the lists following the package-level rules above.
func Load(answersPath, allowedPath string, length int) (*Dictionary, error) {
	switch {
	case answersPath != "" && allowedPath != "":
		ans, err := readWordFile(answersPath)
		if err != nil {
			return nil, err
		}
		all, err := readWordFile(allowedPath)
		if err != nil {
			return nil, err
		}
		return New(ans, all, length)

	case answersPath == "" && allowedPath != "":
		all, err := readWordFile(allowedPath)
		if err != nil {
			return nil, err
		}
		return New(all, all, length)

	case answersPath != "":
		ans, err := readWordFile(answersPath)
		if err != nil {
			return nil, err
		}
		return New(ans, nil, length)

	default:
		return Embedded()
	}
}

// Embedded returns the dictionary built from the embedded assets.
func Embedded() (*Dictionary, error) {
	ans, err := assets.AnswersList()
	if err != nil {
		return nil, fmt.Errorf("embedded answers: %w", err)
	}
	all, err := assets.AllowedList()
	if err != nil {
		return nil, fmt.Errorf("embedded allowed: %w", err)
	}
	return New(ans, all, DefaultLength)
}

// readWordFile loads one word per line from a file.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return assets.ReadLines(f)
}

func normalize(list []string, length int) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, w := range list {
		w = strings.TrimSpace(strings.ToLower(w))
		if len(w) != length || !isAlpha(w) {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// Length is the word length every entry shares.
func (d *Dictionary) Length() int { return d.length }

// Answers returns a copy of the answer list in load order.
func (d *Dictionary) Answers() []string {
	return append([]string(nil), d.answers...)
}

// At returns the i-th answer, wrapping around the list.
func (d *Dictionary) At(i int) string {
	n := len(d.answers)
	return d.answers[((i%n)+n)%n]
}

// Random returns a cryptographically random answer.
func (d *Dictionary) Random() string {
	nBig, err := rand.Int(rand.Reader, big.NewInt(int64(len(d.answers))))
	if err != nil {
		return d.answers[0]
	}
	return d.answers[nBig.Int64()]
}

// IsAllowed reports whether w is a valid guess (answers ∪ guesses).
func (d *Dictionary) IsAllowed(w string) bool {
	_, ok := d.allowedSet[strings.ToLower(w)]
	return ok
}

// IsAnswer reports whether w is an answer word.
func (d *Dictionary) IsAnswer(w string) bool {
	_, ok := d.answersSet[strings.ToLower(w)]
	return ok
}

// Stats returns counts of loaded words: (answers, allowed).
func (d *Dictionary) Stats() (answersCount int, allowedCount int) {
	return len(d.answers), len(d.allowedSet)
}
