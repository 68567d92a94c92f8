// Package config loads process configuration from the environment
package config

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/KirkDiggler/sheetform/internal/clients/external"
	"github.com/KirkDiggler/sheetform/internal/errors"
	"github.com/KirkDiggler/sheetform/internal/llm"
	"github.com/KirkDiggler/sheetform/internal/redis"
)

// DefaultEnvFile is read when Load is given no file name
const DefaultEnvFile = ".env"

// Config holds every setting of the server and the console chat
type Config struct {
	GRPCPort int    `env:"SHEETFORM_GRPC_PORT" envDefault:"50051"`
	LogLevel string `env:"SHEETFORM_LOG_LEVEL" envDefault:"info"`

	// RedisEndpoint empty runs an embedded in-memory Redis
	RedisEndpoint string `env:"SHEETFORM_REDIS_ENDPOINT"`
	RedisPassword string `env:"SHEETFORM_REDIS_PASSWORD"`
	RedisDB       int    `env:"SHEETFORM_REDIS_DB" envDefault:"0"`
	RedisTLS      bool   `env:"SHEETFORM_REDIS_TLS" envDefault:"false"`

	SheetDir      string `env:"SHEETFORM_SHEET_DIR" envDefault:"static"`
	RequireUnique bool   `env:"SHEETFORM_REQUIRE_UNIQUE" envDefault:"false"`

	LLMBackend     string  `env:"SHEETFORM_LLM_BACKEND" envDefault:"gemini"`
	GeminiAPIKey   string  `env:"SHEETFORM_GEMINI_API_KEY"`
	VertexProject  string  `env:"SHEETFORM_VERTEX_PROJECT"`
	VertexLocation string  `env:"SHEETFORM_VERTEX_LOCATION"`
	Model          string  `env:"SHEETFORM_MODEL" envDefault:"gemini-2.5-flash"`
	Temperature    float32 `env:"SHEETFORM_TEMPERATURE" envDefault:"0.7"`

	HintsEnabled  bool          `env:"SHEETFORM_HINTS_ENABLED" envDefault:"true"`
	DND5eBaseURL  string        `env:"SHEETFORM_DND5E_BASE_URL"`
	HintsCacheTTL time.Duration `env:"SHEETFORM_HINTS_CACHE_TTL" envDefault:"24h"`

	// HooksFile is an optional YAML file of hook overrides
	HooksFile     string        `env:"SHEETFORM_HOOKS_FILE"`
	HistoryLength int           `env:"SHEETFORM_HISTORY_LENGTH" envDefault:"10"`
	SessionTTL    time.Duration `env:"SHEETFORM_SESSION_TTL" envDefault:"24h"`
}

// Load reads envFile into the environment when it exists, then parses the
// environment. Variables already set win over the file.
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to load %s", envFile)
		}
		slog.Debug("no env file found, using process environment", "file", envFile)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to parse environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}
	return cfg, nil
}

// Validate checks ranges and enums. Backend credentials are checked when
// the LLM client is built.
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	errors.ValidateRange("GRPCPort", c.GRPCPort, 1, 65535, vb)
	if _, err := c.SlogLevel(); err != nil {
		vb.Fieldf("LogLevel", "unknown level %q", c.LogLevel)
	}
	errors.ValidateRequired("SheetDir", c.SheetDir, vb)
	errors.ValidateEnum("LLMBackend", c.LLMBackend, []string{llm.BackendGeminiAPI, llm.BackendVertexAI}, vb)
	if c.Temperature < 0 || c.Temperature > 2 {
		vb.Field("Temperature", "must be between 0 and 2")
	}
	if c.HistoryLength < 0 {
		vb.Field("HistoryLength", "must not be negative")
	}
	if c.SessionTTL <= 0 {
		vb.Field("SessionTTL", "must be positive")
	}
	if c.RedisDB < 0 {
		vb.Field("RedisDB", "must not be negative")
	}

	return vb.Build()
}

// SlogLevel parses LogLevel
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return slog.LevelInfo, err
	}
	return level, nil
}

// LLM returns the language model client settings
func (c *Config) LLM() *llm.Config {
	return &llm.Config{
		Backend:     c.LLMBackend,
		APIKey:      c.GeminiAPIKey,
		Project:     c.VertexProject,
		Location:    c.VertexLocation,
		Model:       c.Model,
		Temperature: c.Temperature,
	}
}

// Redis returns the connection pool options
func (c *Config) Redis() *redis.Options {
	return &redis.Options{
		Password: c.RedisPassword,
		DB:       c.RedisDB,
		UseTLS:   c.RedisTLS,
	}
}

// External returns the SRD API client settings
func (c *Config) External() *external.Config {
	return &external.Config{
		BaseURL:  c.DND5eBaseURL,
		CacheTTL: c.HintsCacheTTL,
	}
}
