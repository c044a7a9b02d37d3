package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/RobinCoderZhao/newsagg/internal/newsagg/sources"
	"github.com/RobinCoderZhao/newsagg/internal/newsagg/summary"
	"github.com/RobinCoderZhao/newsagg/pkg/config"
	"github.com/RobinCoderZhao/newsagg/pkg/llm"
)

const defaultConfigPath = "configs/newsagg.yaml"

// openAIKeyEnv holds the key when the openai provider is selected. HF_API_KEY,
// bound through the summarizer config tags, serves the huggingface provider.
const openAIKeyEnv = "OPENAI_API_KEY"

// Config holds all configuration for the aggregator.
type Config struct {
	Server     ServerConfig          `yaml:"server"`
	Log        LogConfig             `yaml:"log"`
	NewsAPI    sources.NewsAPIConfig `yaml:"newsapi"`
	Summarizer SummarizerConfig      `yaml:"summarizer"`
	Cache      summary.CacheConfig   `yaml:"cache"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port            string        `yaml:"port" env:"PORT" validate:"required,numeric"`
	CORSOrigin      string        `yaml:"cors_origin" env:"CORS_ORIGIN"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" env:"LOG_FORMAT" validate:"oneof=text json"`
}

// SummarizerConfig is the inference client config plus call pacing.
type SummarizerConfig struct {
	llm.Config `yaml:",inline"`

	RPM   int `yaml:"rpm" env:"SUMMARIZER_RPM" validate:"min=0"`
	Burst int `yaml:"burst" env:"SUMMARIZER_BURST" validate:"min=0"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            "5000",
			CORSOrigin:      "*",
			ShutdownTimeout: 5 * time.Second,
		},
		Log:        LogConfig{Level: "info", Format: "text"},
		NewsAPI:    sources.DefaultNewsAPIConfig(),
		Summarizer: SummarizerConfig{Config: llm.DefaultConfig()},
		Cache:      summary.DefaultCacheConfig(),
	}
}

// loadConfig reads .env (if present), then the YAML file at path (if present),
// then env overrides.
func loadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()
	if err := config.LoadOrDefault(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if cfg.Summarizer.Provider == llm.OpenAI {
		if key := os.Getenv(openAIKeyEnv); key != "" {
			cfg.Summarizer.APIKey = key
		}
	}
	return cfg, nil
}

func newLogger(w io.Writer, cfg LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
