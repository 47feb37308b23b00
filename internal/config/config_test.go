package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Env.ID != "HardWordle-v0" || cfg.Rubric.Format != 0.2 || cfg.Server.SessionTTL != time.Hour {
		t.Fatalf("defaults = %+v", cfg)
	}
	if len(cfg.Specs()) != 2 {
		t.Fatalf("Specs = %+v", cfg.Specs())
	}
	if len(cfg.Parser().Fields) != 2 {
		t.Fatal("think parser expected by default")
	}
}

func TestLoadYAMLThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yml := `
log_level: debug
server:
  port: "9000"
  session_ttl: 30m
env:
  id: Wordle-v0
  think: false
  extra:
    - id: Wordle-Long-v0
      hard: true
      config:
        max_guesses: 10
        error_allowance: 3
rubric:
  exact_match: 2
  partial_credit: 1
  turn_discounted: 1
  format: 0
dataset:
  train: 5
  eval: 1
  seed: 42
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "7000")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("JWT_EXPIRES_HOURS", "2")
	t.Setenv("LLM_MODEL", "tiny")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" || cfg.Env.ID != "Wordle-v0" || cfg.Env.Think {
		t.Fatalf("yaml not applied: %+v", cfg)
	}
	if cfg.Server.Port != "7000" || cfg.Server.JWTSecret != "s3cret" || cfg.Server.JWTExpiresHours != 2 {
		t.Fatalf("env not applied: %+v", cfg.Server)
	}
	if cfg.Server.SessionTTL != 30*time.Minute {
		t.Fatalf("session ttl = %v", cfg.Server.SessionTTL)
	}
	if cfg.Rubric.ExactMatch != 2 || cfg.Rubric.Format != 0 {
		t.Fatalf("rubric = %+v", cfg.Rubric)
	}
	if cfg.Dataset.Train != 5 || cfg.Dataset.Seed != 42 {
		t.Fatalf("dataset = %+v", cfg.Dataset)
	}
	if cfg.Eval.Chat.Model != "tiny" {
		t.Fatalf("chat model = %q", cfg.Eval.Chat.Model)
	}
	specs := cfg.Specs()
	if len(specs) != 3 || specs[2].ID != "Wordle-Long-v0" || !specs[2].Hard || specs[2].Config.MaxGuesses != 10 {
		t.Fatalf("specs = %+v", specs)
	}
	if len(cfg.Parser().Fields) != 1 {
		t.Fatal("guess-only parser expected")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
