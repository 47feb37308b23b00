// internal/game/board.go
//
// Text rendering of accepted guesses for environment messages:
//   - "You submitted [WORD]." lines.
//   - The feedback block (letters, then the G/Y/X scoring line last).

package game

import (
	"fmt"
	"strings"
)

// FeedbackMarker introduces the feedback block in environment messages. The
// scoring line is always the last line after it.
const FeedbackMarker = "Feedback:"

// FeedbackBlock renders a record as
//
//	Feedback:
//	C R A N E
//	X X Y X Y
func FeedbackBlock(rec GuessRecord) string {
	letters := make([]string, len(rec.Word))
	for i := range rec.Word {
		letters[i] = strings.ToUpper(rec.Word[i : i+1])
	}
	return FeedbackMarker + "\n" + strings.Join(letters, " ") + "\n" + rec.Feedback.String()
}

func submitted(rec GuessRecord) string {
	return fmt.Sprintf("You submitted [%s].", strings.ToUpper(rec.Word))
}
