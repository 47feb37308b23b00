// internal/httpserver/server.go
//
// HTTP server wiring for the environment service.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/debug/words", "POST /auth/token".
//   - Environment endpoints: POST /env/reset, POST /env/step, GET|DELETE /env/{id}.
//   - Scoring endpoint: POST /rewards/score.
//   - Rollout endpoints: mounted under /rollouts (see routes_rollouts.go).
//
// Notes:
//   - When a JWT secret is configured every endpoint except the public ones
//     requires a bearer token issued by /auth/token.
//   - Sessions live in the session store; finished episodes are scored and
//     written to the results store (best effort) when one is configured.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/TanmayKhot/hard-wordle-eval/internal/env"
	"github.com/TanmayKhot/hard-wordle-eval/internal/results"
	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
	"github.com/TanmayKhot/hard-wordle-eval/internal/secret"
	"github.com/TanmayKhot/hard-wordle-eval/internal/store"
)

// Deps are the collaborators a Server needs. Results may be nil.
type Deps struct {
	Registry     *env.Registry
	Sessions     store.Store
	Results      *results.Store
	Rubric       *reward.Rubric
	Picker       *secret.Picker
	SystemPrompt string
}

// Options hold auth and CORS settings.
type Options struct {
	DefaultEnv       string
	ClientOrigin     string
	JWTSecret        string
	JWTExpires       time.Duration
	ClientID         string
	ClientSecretHash string
	SessionTTL       time.Duration
	RequestTimeout   time.Duration
}

// Server bundles the router and its dependencies.
type Server struct {
	r    *chi.Mux
	deps Deps
	opts Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(d Deps, o Options) *Server {
	if o.DefaultEnv == "" {
		o.DefaultEnv = env.HardWordleID
	}
	if o.ClientOrigin == "" {
		o.ClientOrigin = "http://localhost:5173"
	}
	if o.JWTExpires <= 0 {
		o.JWTExpires = 24 * time.Hour
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = 60 * time.Second
	}
	s := &Server{r: chi.NewRouter(), deps: d, opts: o}

	// --- middleware ---
	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(o.RequestTimeout))
	s.r.Use(jsonContentType)
	s.r.Use(s.cors)

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"service": "hard-wordle-eval",
			"envs":    d.Registry.IDs(),
			"endpoints": []string{"/health", "POST /auth/token", "POST /env/reset", "POST /env/step",
				"GET /env/{id}", "POST /rewards/score", "POST /rollouts", "GET /rollouts/leaderboard"},
		})
	})
	s.r.Get("/health", s.handleHealth)
	s.r.Get("/debug/words", func(w http.ResponseWriter, r *http.Request) {
		a, g := d.Registry.Dictionary().Stats()
		_ = json.NewEncoder(w).Encode(map[string]int{"answers": a, "allowed": g})
	})
	s.r.Post("/auth/token", s.handleToken)

	// --- gated ---
	s.r.Group(func(r chi.Router) {
		if o.JWTSecret != "" {
			r.Use(s.requireAuth())
		}
		r.Post("/env/reset", s.handleReset)
		r.Post("/env/step", s.handleStep)
		r.Get("/env/{id}", s.handleGetSession)
		r.Delete("/env/{id}", s.handleDeleteSession)
		r.Post("/rewards/score", s.handleScore)
		s.mountRollouts(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start serves on addr until ctx is cancelled, sweeping idle sessions while
// it runs.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 10 * time.Second}

	go s.sweep(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

type sweeper interface {
	Sweep(ttl time.Duration) int
}

func (s *Server) sweep(ctx context.Context) {
	sw, ok := s.deps.Sessions.(sweeper)
	if !ok || s.opts.SessionTTL <= 0 {
		return
	}
	t := time.NewTicker(s.opts.SessionTTL / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := sw.Sweep(s.opts.SessionTTL); n > 0 {
				log.Info().Int("sessions", n).Msg("swept idle sessions")
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.Results != nil {
		if err := s.deps.Results.Ping(r.Context()); err != nil {
			log.Error().Err(err).Msg("health: results db")
			http.Error(w, `{"ok":false,"error":"db_unavailable"}`, http.StatusServiceUnavailable)
			return
		}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"ok": true, "sessions": s.deps.Sessions.Len()})
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for the configured origin.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.opts.ClientOrigin)
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// jsonError writes {"error": msg} with code.
func jsonError(w http.ResponseWriter, msg string, code int) {
	b, _ := json.Marshal(map[string]string{"error": msg})
	http.Error(w, string(b), code)
}
