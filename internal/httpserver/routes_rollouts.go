// internal/httpserver/routes_rollouts.go
//
// HTTP routes for batch evaluation and stored rollouts.
// Exposes endpoints under /rollouts:
//   - POST /rollouts              → evaluate the reference solver on N episodes
//   - GET  /rollouts/leaderboard  → agents ranked on an environment
//   - GET  /rollouts/runs/{runId} → aggregate of one evaluation run
//   - GET  /rollouts/{id}         → one stored rollout
//
// Secrets for POST /rollouts come from the deterministic picker, so the same
// (seed, episodes) request always plays the same words.

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/TanmayKhot/hard-wordle-eval/internal/agent"
	"github.com/TanmayKhot/hard-wordle-eval/internal/env"
	"github.com/TanmayKhot/hard-wordle-eval/internal/results"
	"github.com/TanmayKhot/hard-wordle-eval/internal/rollout"
)

const maxEpisodesPerRequest = 200

// mountRollouts registers all /rollouts routes.
func (s *Server) mountRollouts(r chi.Router) {
	r.Route("/rollouts", func(r chi.Router) {
		r.Post("/", s.handleCreateRollouts)
		r.Get("/leaderboard", s.handleLeaderboard)
		r.Get("/runs/{runId}", s.handleRunSummary)
		r.Get("/{id}", s.handleGetRollout)
	})
}

type createRolloutsReq struct {
	EnvID    string `json:"envId"`
	Episodes int    `json:"episodes"`
	Seed     int64  `json:"seed"`
	Workers  int    `json:"workers"`
}
type createRolloutsRes struct {
	Summary rollout.Summary `json:"summary"`
	IDs     []string        `json:"ids"`
}

// handleCreateRollouts evaluates the reference solver synchronously.
func (s *Server) handleCreateRollouts(w http.ResponseWriter, r *http.Request) {
	var req createRolloutsReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	if req.EnvID == "" {
		req.EnvID = s.opts.DefaultEnv
	}
	if _, ok := s.deps.Registry.Spec(req.EnvID); !ok {
		jsonError(w, env.ErrUnknownEnv.Error()+": "+req.EnvID, http.StatusNotFound)
		return
	}
	if req.Episodes <= 0 || req.Episodes > maxEpisodesPerRequest {
		jsonError(w, "episodes must be between 1 and "+strconv.Itoa(maxEpisodesPerRequest), http.StatusBadRequest)
		return
	}

	tasks := make([]rollout.Task, req.Episodes)
	for i := range tasks {
		tasks[i] = rollout.Task{Index: i, Secret: s.deps.Picker.Pick(req.Seed, i)}
	}
	answers := s.deps.Registry.Dictionary().Answers()
	runner := &rollout.Runner{
		Registry: s.deps.Registry,
		EnvID:    req.EnvID,
		NewAgent: func(t rollout.Task) agent.Agent {
			return agent.NewSolver(answers, req.Seed+int64(t.Index), len(s.deps.Rubric.Parser.Fields) > 1)
		},
		Rubric:       s.deps.Rubric,
		SystemPrompt: s.deps.SystemPrompt,
		Workers:      req.Workers,
	}
	if s.deps.Results != nil {
		runner.Sink = s.deps.Results
	}
	recs, sum, err := runner.Run(r.Context(), tasks)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	out := createRolloutsRes{Summary: sum, IDs: make([]string, len(recs))}
	for i, rec := range recs {
		out.IDs[i] = rec.ID
	}
	_ = json.NewEncoder(w).Encode(out)
}

// resultsOr503 returns the results store or writes 503 when none is configured.
func (s *Server) resultsOr503(w http.ResponseWriter) *results.Store {
	if s.deps.Results == nil {
		http.Error(w, `{"error":"results_disabled"}`, http.StatusServiceUnavailable)
	}
	return s.deps.Results
}

// handleLeaderboard ranks agents on ?envId= (default env), top ?limit= (20).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	res := s.resultsOr503(w)
	if res == nil {
		return
	}
	envID := r.URL.Query().Get("envId")
	if envID == "" {
		envID = s.opts.DefaultEnv
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	rows, err := res.Leaderboard(r.Context(), envID, limit)
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"envId": envID, "rows": rows})
}

func (s *Server) handleRunSummary(w http.ResponseWriter, r *http.Request) {
	res := s.resultsOr503(w)
	if res == nil {
		return
	}
	sum, err := res.RunSummary(r.Context(), chi.URLParam(r, "runId"))
	if errors.Is(err, results.ErrNotFound) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(sum)
}

func (s *Server) handleGetRollout(w http.ResponseWriter, r *http.Request) {
	res := s.resultsOr503(w)
	if res == nil {
		return
	}
	rec, err := res.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, results.ErrNotFound) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, `{"error":"db_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(rec)
}
