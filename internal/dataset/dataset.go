// internal/dataset/dataset.go
//
// Train/eval episode lists. Every row carries the same question (the welcome
// observation) and a secret answer chosen by a secret.Picker, so a dataset is
// fully determined by (salt, seed, sizes).

package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Row is one episode.
type Row struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Picker chooses the secret for an episode index.
type Picker interface {
	Pick(seed int64, episode int) string
}

// Generate returns train rows then eval rows. Episode indices run across
// both splits so the eval answers differ from the train ones for a given seed.
func Generate(p Picker, question string, train, eval int, seed int64) (trainRows, evalRows []Row) {
	trainRows = make([]Row, 0, max(train, 0))
	evalRows = make([]Row, 0, max(eval, 0))
	for i := 0; i < train+eval; i++ {
		row := Row{Question: question, Answer: p.Pick(seed, i)}
		if i < train {
			trainRows = append(trainRows, row)
		} else {
			evalRows = append(evalRows, row)
		}
	}
	return trainRows, evalRows
}

// WriteJSONL writes one JSON object per line.
func WriteJSONL(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i, r := range rows {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// ReadJSONL reads rows written by WriteJSONL. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]Row, error) {
	var out []Row
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(b) == 0 {
			continue
		}
		var row Row
		if err := json.Unmarshal(b, &row); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		out = append(out, row)
	}
	return out, sc.Err()
}

// WriteFile writes rows to path, creating parent directories.
func WriteFile(path string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSONL(f, rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads rows from path.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSONL(f)
}
