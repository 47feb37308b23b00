package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
	"github.com/TanmayKhot/hard-wordle-eval/internal/rollout"
)

// ErrNotFound is returned by Get for unknown rollout IDs.
var ErrNotFound = errors.New("rollout not found")

// Store persists scored rollouts.
type Store struct{ db *sql.DB }

// Open opens the database at path and applies migrations.
func Open(path string) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Save inserts rec. Saving the same ID twice is ignored.
func (s *Store) Save(ctx context.Context, rec *rollout.Record) error {
	rewards, err := json.Marshal(rec.Scores.Rewards)
	if err != nil {
		return fmt.Errorf("encode rewards: %w", err)
	}
	prompt, err := json.Marshal(rec.Prompt)
	if err != nil {
		return fmt.Errorf("encode prompt: %w", err)
	}
	completion, err := json.Marshal(rec.Completion)
	if err != nil {
		return fmt.Errorf("encode completion: %w", err)
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err = s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO rollouts
            (id, run_id, env_id, agent, answer, won, truncated, turns, invalid_moves,
             env_reward, total, rewards, prompt, completion, duration_ms, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunID, rec.EnvID, rec.Agent, rec.Answer, rec.Won, rec.Truncated, rec.Turns, rec.InvalidMoves,
		rec.EnvReward, rec.Scores.Total, string(rewards), string(prompt), string(completion),
		rec.Duration.Milliseconds(), created.Format(time.RFC3339Nano),
	)
	return err
}

// Get loads one rollout by ID.
func (s *Store) Get(ctx context.Context, id string) (*rollout.Record, error) {
	var (
		rec                         rollout.Record
		rewards, prompt, completion string
		durationMs                  int64
		created                     string
	)
	err := s.db.QueryRowContext(ctx, `
        SELECT id, run_id, env_id, agent, answer, won, truncated, turns, invalid_moves,
               env_reward, total, rewards, prompt, completion, duration_ms, created_at
        FROM rollouts WHERE id=?`, id,
	).Scan(&rec.ID, &rec.RunID, &rec.EnvID, &rec.Agent, &rec.Answer, &rec.Won, &rec.Truncated, &rec.Turns,
		&rec.InvalidMoves, &rec.EnvReward, &rec.Scores.Total, &rewards, &prompt, &completion, &durationMs, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(rewards), &rec.Scores.Rewards); err != nil {
		return nil, fmt.Errorf("decode rewards: %w", err)
	}
	var p, c reward.Transcript
	if err := json.Unmarshal([]byte(prompt), &p); err != nil {
		return nil, fmt.Errorf("decode prompt: %w", err)
	}
	if err := json.Unmarshal([]byte(completion), &c); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	rec.Prompt, rec.Completion = p, c
	rec.Duration = time.Duration(durationMs) * time.Millisecond
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
	return &rec, nil
}

// LBRow is one agent's aggregate on an environment.
type LBRow struct {
	Agent      string  `json:"agent"`
	Episodes   int     `json:"episodes"`
	MeanReward float64 `json:"meanReward"`
	WinRate    float64 `json:"winRate"`
	MeanTurns  float64 `json:"meanTurns"`
}

// Leaderboard ranks agents on envID by mean rubric total, then win rate, then
// fewest turns. Default limit is 20.
func (s *Store) Leaderboard(ctx context.Context, envID string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT agent, COUNT(1), AVG(total), AVG(won), AVG(turns)
        FROM rollouts
        WHERE env_id=?
        GROUP BY agent
        ORDER BY AVG(total) DESC, AVG(won) DESC, AVG(turns) ASC
        LIMIT ?`, envID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Agent, &r.Episodes, &r.MeanReward, &r.WinRate, &r.MeanTurns); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunSummary recomputes the summary of a stored run.
func (s *Store) RunSummary(ctx context.Context, runID string) (rollout.Summary, error) {
	sum := rollout.Summary{RunID: runID}
	var envID sql.NullString
	var winRate, meanReward, meanTurns sql.NullFloat64
	var invalid sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
        SELECT MAX(env_id), COUNT(1), COALESCE(SUM(won), 0), AVG(won), AVG(total), AVG(turns), SUM(invalid_moves)
        FROM rollouts WHERE run_id=?`, runID,
	).Scan(&envID, &sum.Episodes, &sum.Wins, &winRate, &meanReward, &meanTurns, &invalid)
	if err != nil {
		return sum, err
	}
	if sum.Episodes == 0 {
		return sum, ErrNotFound
	}
	sum.EnvID = envID.String
	sum.WinRate, sum.MeanReward, sum.MeanTurns = winRate.Float64, meanReward.Float64, meanTurns.Float64
	sum.InvalidMoves = int(invalid.Int64)
	return sum, nil
}
