// internal/env/env.go
//
// Environment variants and episode sessions.
//
// A Registry maps environment IDs to Specs. It is built once at startup
// (NewRegistry with DefaultSpecs, plus any Register calls made before the
// registry is shared) and is read-only afterwards; consumers receive it
// explicitly, there is no package-level registry.
//
// A Session owns one game.Game and its transcript. Steps on a session are
// serialised by its mutex; different sessions share nothing mutable.

package env

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TanmayKhot/hard-wordle-eval/internal/game"
	"github.com/TanmayKhot/hard-wordle-eval/internal/hardmode"
	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
	"github.com/TanmayKhot/hard-wordle-eval/internal/words"
)

// Environment IDs registered by default.
const (
	WordleID     = "Wordle-v0"
	HardWordleID = "HardWordle-v0"
)

var (
	ErrUnknownEnv   = errors.New("env: unknown environment id")
	ErrDuplicateEnv = errors.New("env: environment id already registered")
	ErrBadSecret    = errors.New("env: secret does not fit the environment")
)

// Spec describes one environment variant.
type Spec struct {
	ID     string      `json:"id" yaml:"id"`
	Hard   bool        `json:"hard" yaml:"hard"`
	Config game.Config `json:"config" yaml:"config"`
}

// DefaultSpecs are the standard and hard-mode 6×5 games. Hard mode tolerates
// up to ten invalid moves so that violations cost a turn rather than the game.
func DefaultSpecs() []Spec {
	return []Spec{
		{ID: WordleID, Config: game.Config{WordLength: 5, MaxGuesses: 6, ErrorAllowance: 1}},
		{ID: HardWordleID, Hard: true, Config: game.Config{WordLength: 5, MaxGuesses: 6, ErrorAllowance: 10}},
	}
}

// Registry maps environment IDs to specs over one dictionary.
type Registry struct {
	dict  *words.Dictionary
	specs map[string]Spec
}

// NewRegistry builds a registry holding specs.
func NewRegistry(dict *words.Dictionary, specs ...Spec) (*Registry, error) {
	r := &Registry{dict: dict, specs: make(map[string]Spec, len(specs))}
	for _, s := range specs {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a spec. Only call it while setting the registry up.
func (r *Registry) Register(s Spec) error {
	if _, ok := r.specs[s.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateEnv, s.ID)
	}
	if s.Config.WordLength == 0 {
		s.Config.WordLength = r.dict.Length()
	}
	if s.Config.WordLength != r.dict.Length() {
		return fmt.Errorf("env %s: word length %d does not match dictionary length %d", s.ID, s.Config.WordLength, r.dict.Length())
	}
	r.specs[s.ID] = s
	return nil
}

// Spec returns the spec registered under id.
func (r *Registry) Spec(id string) (Spec, bool) {
	s, ok := r.specs[id]
	return s, ok
}

// IDs lists registered IDs in sorted order.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.specs))
	for id := range r.specs {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Dictionary returns the registry's word lists.
func (r *Registry) Dictionary() *words.Dictionary { return r.dict }

// Options customise one episode. Zero values keep the spec defaults.
type Options struct {
	Secret         string `json:"secret,omitempty"`
	MaxGuesses     int    `json:"maxGuesses,omitempty"`
	ErrorAllowance *int   `json:"errorAllowance,omitempty"`
}

// Processor returns the turn processor for spec s.
func (r *Registry) Processor(s Spec) game.Processor {
	e := game.NewEngine(r.dict)
	if s.Hard {
		return hardmode.Wrap(e)
	}
	return e
}

// Make starts a new episode of environment id.
func (r *Registry) Make(id string, opts Options) (*Session, error) {
	s, ok := r.specs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEnv, id)
	}
	cfg := s.Config
	if opts.MaxGuesses > 0 {
		cfg.MaxGuesses = opts.MaxGuesses
	}
	if opts.ErrorAllowance != nil {
		cfg.ErrorAllowance = *opts.ErrorAllowance
	}

	secret := strings.ToLower(strings.TrimSpace(opts.Secret))
	if secret == "" {
		secret = r.dict.Random()
	}
	if len(secret) != cfg.WordLength || !r.dict.IsAllowed(secret) {
		return nil, fmt.Errorf("%w: %q", ErrBadSecret, secret)
	}

	g := game.New(secret, cfg)
	sess := &Session{
		ID:        uuid.NewString(),
		EnvID:     s.ID,
		Hard:      s.Hard,
		Game:      g,
		CreatedAt: time.Now().UTC(),
		proc:      r.Processor(s),
	}
	g.ID = sess.ID
	sess.Transcript = reward.Transcript{{Role: reward.RoleUser, Content: Welcome(cfg, s.Hard)}}
	return sess, nil
}

// Session is one running episode.
type Session struct {
	ID         string
	EnvID      string
	Hard       bool
	Game       *game.Game
	Transcript reward.Transcript
	CreatedAt  time.Time

	mu   sync.Mutex
	proc game.Processor
}

// Observation returns the latest environment message.
func (s *Session) Observation() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.Transcript) - 1; i >= 0; i-- {
		if s.Transcript[i].Role == reward.RoleUser {
			return s.Transcript[i].Content
		}
	}
	return ""
}

// Step processes action and records it verbatim in the transcript.
func (s *Session) Step(action string) (game.Result, error) {
	return s.Turn(action, action)
}

// Turn records reply as the agent's message, feeds action (usually the guess
// parsed out of reply) to the processor, and records the environment answer.
func (s *Session) Turn(reply, action string) (game.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.proc.Process(s.Game, action)
	if err != nil {
		return res, err
	}
	s.Transcript = append(s.Transcript,
		reward.Message{Role: reward.RoleAssistant, Content: reply},
		reward.Message{Role: reward.RoleUser, Content: res.Message},
	)
	return res, nil
}

// View is a JSON-friendly snapshot of a session. The secret is only included
// once the episode is over.
type View struct {
	ID           string             `json:"id"`
	EnvID        string             `json:"envId"`
	Hard         bool               `json:"hard"`
	State        string             `json:"state"`
	WordLength   int                `json:"wordLength"`
	GuessesLeft  int                `json:"guessesLeft"`
	InvalidMoves int                `json:"invalidMoves"`
	History      []game.GuessRecord `json:"history"`
	Secret       string             `json:"secret,omitempty"`
	Reward       float64            `json:"reward"`
	Reason       string             `json:"reason,omitempty"`
	Transcript   reward.Transcript  `json:"transcript"`
}

// Snapshot copies the session state under its lock.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.Game
	v := View{
		ID:           s.ID,
		EnvID:        s.EnvID,
		Hard:         s.Hard,
		State:        g.State(),
		WordLength:   g.WordLength,
		GuessesLeft:  g.GuessesLeft(),
		InvalidMoves: g.InvalidMoves,
		History:      append([]game.GuessRecord(nil), g.History...),
		Transcript:   append(reward.Transcript(nil), s.Transcript...),
	}
	if g.Finished {
		v.Secret = g.Secret
		v.Reward = g.FinalReward
		v.Reason = g.FinalReason
	}
	return v
}
