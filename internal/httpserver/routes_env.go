// internal/httpserver/routes_env.go
//
// Environment endpoints for trainers and clients.
// Routes:
//   - POST   /env/reset      → start an episode, returns the welcome observation
//   - POST   /env/step       → apply one action; finished episodes are scored
//   - GET    /env/{id}       → snapshot (secret only once finished)
//   - DELETE /env/{id}       → drop a session
//   - POST   /rewards/score  → rubric scores for a posted completion

package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/TanmayKhot/hard-wordle-eval/internal/env"
	"github.com/TanmayKhot/hard-wordle-eval/internal/game"
	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
	"github.com/TanmayKhot/hard-wordle-eval/internal/rollout"
	"github.com/TanmayKhot/hard-wordle-eval/internal/store"
)

// resetReq/Res payloads for POST /env/reset.
type resetReq struct {
	EnvID string `json:"envId"`
	env.Options
}
type resetRes struct {
	SessionID    string `json:"sessionId"`
	EnvID        string `json:"envId"`
	SystemPrompt string `json:"systemPrompt,omitempty"`
	Observation  string `json:"observation"`
}

// handleReset starts a new episode and stores its session.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetReq
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
			return
		}
	}
	if req.EnvID == "" {
		req.EnvID = s.opts.DefaultEnv
	}
	sess, err := s.deps.Registry.Make(req.EnvID, req.Options)
	switch {
	case errors.Is(err, env.ErrUnknownEnv):
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.deps.Sessions.Save(r.Context(), sess); err != nil {
		log.Error().Err(err).Msg("save session")
		http.Error(w, `{"error":"save_failed"}`, http.StatusInternalServerError)
		return
	}
	log.Debug().Str("session", sess.ID).Str("env", sess.EnvID).Str("client", clientID(r)).Msg("episode started")
	_ = json.NewEncoder(w).Encode(resetRes{
		SessionID:    sess.ID,
		EnvID:        sess.EnvID,
		SystemPrompt: s.deps.SystemPrompt,
		Observation:  sess.Observation(),
	})
}

// stepReq/Res payloads for POST /env/step. Action is either a bare
// "[word]" or a full agent reply carrying a <guess> field. A bare action is
// recorded in the transcript wrapped in the answer field.
type stepReq struct {
	SessionID string `json:"sessionId"`
	Action    string `json:"action"`
}
type stepRes struct {
	Observation string         `json:"observation"`
	Reward      float64        `json:"reward"`
	Done        bool           `json:"done"`
	Outcome     game.Outcome   `json:"outcome"`
	State       string         `json:"state"`
	RolloutID   string         `json:"rolloutId,omitempty"`
	Scores      *reward.Scores `json:"scores,omitempty"`
}

// handleStep applies one action. When the episode ends it is scored and,
// if a results store is configured, persisted (best effort).
func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	var req stepReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	sess, err := s.deps.Sessions.Get(r.Context(), req.SessionID)
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}

	reply, action := req.Action, req.Action
	p := s.deps.Rubric.Parser
	if strings.Contains(reply, "<"+p.AnswerField+">") {
		action, _ = p.Field(reply, p.AnswerField)
	} else {
		reply = "<" + p.AnswerField + ">" + action + "</" + p.AnswerField + ">"
	}
	res, err := sess.Turn(reply, action)
	if errors.Is(err, game.ErrGameFinished) {
		http.Error(w, `{"error":"episode_finished"}`, http.StatusConflict)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	// refresh the idle timer
	_ = s.deps.Sessions.Save(r.Context(), sess)

	out := stepRes{
		Observation: res.Message,
		Reward:      res.Reward,
		Done:        res.Done,
		Outcome:     res.Outcome,
		State:       sess.Snapshot().State,
	}
	if res.Done {
		rec := rollout.Capture(sess, clientID(r), s.deps.SystemPrompt)
		rec.Scores = s.deps.Rubric.Score(rec.Completion, rec.Answer)
		out.Scores = &rec.Scores
		if s.deps.Results != nil {
			if err := s.deps.Results.Save(r.Context(), rec); err != nil {
				log.Warn().Err(err).Str("session", sess.ID).Msg("store finished episode")
			} else {
				out.RolloutID = rec.ID
			}
		}
	}
	_ = json.NewEncoder(w).Encode(out)
}

// handleGetSession returns a snapshot; the secret is shown once finished.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.deps.Sessions.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(sess.Snapshot())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	err := s.deps.Sessions.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}

// scoreReq payload for POST /rewards/score.
type scoreReq struct {
	Completion reward.Transcript `json:"completion"`
	Answer     string            `json:"answer"`
}

// handleScore runs the rubric over a posted completion.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_json"}`, http.StatusBadRequest)
		return
	}
	_ = json.NewEncoder(w).Encode(s.deps.Rubric.Score(req.Completion, strings.ToLower(strings.TrimSpace(req.Answer))))
}
