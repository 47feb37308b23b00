// internal/config/config.go
//
// Process configuration.
//
// Load order (later wins):
//  1. Default()
//  2. .env in the working directory (godotenv), exported into the environment
//  3. optional YAML file
//  4. environment variables (PORT, LOG_LEVEL, DB_PATH, JWT_SECRET, ...)

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/TanmayKhot/hard-wordle-eval/internal/agent"
	"github.com/TanmayKhot/hard-wordle-eval/internal/env"
	"github.com/TanmayKhot/hard-wordle-eval/internal/reward"
)

// Config is the root configuration.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	Server   ServerConfig   `yaml:"server"`
	Words    WordsConfig    `yaml:"words"`
	Env      EnvConfig      `yaml:"env"`
	Rubric   reward.Weights `yaml:"rubric"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Eval     EvalConfig     `yaml:"eval"`
}

// ServerConfig holds HTTP server and auth settings.
type ServerConfig struct {
	Port             string        `yaml:"port"`
	ClientOrigin     string        `yaml:"client_origin"`
	DBPath           string        `yaml:"db_path"`
	JWTSecret        string        `yaml:"-"`
	JWTExpiresHours  int           `yaml:"jwt_expires_hours"`
	ClientID         string        `yaml:"client_id"`
	ClientSecretHash string        `yaml:"client_secret_hash"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
}

// WordsConfig points at word list files; empty paths use the embedded lists.
type WordsConfig struct {
	AnswersFile string `yaml:"answers_file"`
	AllowedFile string `yaml:"allowed_file"`
}

// EnvConfig selects the environment and secret salt. Extra specs are
// registered next to the defaults.
type EnvConfig struct {
	ID         string     `yaml:"id"`
	Think      bool       `yaml:"think"`
	SecretSalt string     `yaml:"secret_salt"`
	Extra      []env.Spec `yaml:"extra"`
}

// DatasetConfig sizes the generated splits.
type DatasetConfig struct {
	Train int   `yaml:"train"`
	Eval  int   `yaml:"eval"`
	Seed  int64 `yaml:"seed"`
}

// EvalConfig drives batch evaluation.
type EvalConfig struct {
	Agent      string           `yaml:"agent"` // "solver" or "chat"
	Workers    int              `yaml:"workers"`
	ReportPath string           `yaml:"report_path"`
	Chat       agent.ChatConfig `yaml:"chat"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port:            "5175",
			ClientOrigin:    "http://localhost:5173",
			DBPath:          "./data/results.db",
			JWTExpiresHours: 24,
			SessionTTL:      time.Hour,
		},
		Env: EnvConfig{
			ID:         env.HardWordleID,
			Think:      true,
			SecretSalt: "hard-wordle",
		},
		Rubric:  reward.DefaultWeights(),
		Dataset: DatasetConfig{Train: 2000, Eval: 20, Seed: 0},
		Eval: EvalConfig{
			Agent:      "solver",
			Workers:    4,
			ReportPath: "results.txt",
			Chat:       agent.ChatConfig{BaseURL: "https://openrouter.ai/api", Model: "gpt-4o-mini"},
		},
	}
}

// Load builds the configuration from defaults, .env, the YAML file at path
// (skipped when empty) and the environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.ClientOrigin = getEnv("CLIENT_ORIGIN", c.Server.ClientOrigin)
	c.Server.DBPath = getEnv("DB_PATH", c.Server.DBPath)
	c.Server.JWTSecret = getEnv("JWT_SECRET", c.Server.JWTSecret)
	c.Server.JWTExpiresHours = envInt("JWT_EXPIRES_HOURS", c.Server.JWTExpiresHours)
	c.Server.ClientID = getEnv("CLIENT_ID", c.Server.ClientID)
	c.Server.ClientSecretHash = getEnv("CLIENT_SECRET_HASH", c.Server.ClientSecretHash)

	c.Words.AnswersFile = getEnv("WORDS_ANSWERS_FILE", c.Words.AnswersFile)
	c.Words.AllowedFile = getEnv("WORDS_ALLOWED_FILE", c.Words.AllowedFile)

	c.Env.ID = getEnv("ENV_ID", c.Env.ID)
	c.Env.SecretSalt = getEnv("SECRET_SALT", c.Env.SecretSalt)

	c.Eval.Chat.BaseURL = getEnv("LLM_BASE_URL", c.Eval.Chat.BaseURL)
	c.Eval.Chat.APIKey = getEnv("LLM_API_KEY", c.Eval.Chat.APIKey)
	c.Eval.Chat.Model = getEnv("LLM_MODEL", c.Eval.Chat.Model)
}

// Specs returns the default environment specs followed by the extra ones.
func (c *Config) Specs() []env.Spec {
	return append(env.DefaultSpecs(), c.Env.Extra...)
}

// Parser returns the reply parser matching the think setting.
func (c *Config) Parser() *reward.Parser {
	if c.Env.Think {
		return reward.ThinkParser()
	}
	return reward.GuessParser()
}

// getEnv returns the value of k or def if unset/empty.
func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// envInt parses k as an int, falling back to def.
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
