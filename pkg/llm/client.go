// Package llm provides a unified interface for hosted text-summarization models.
// It supports the Hugging Face Inference API and OpenAI-compatible chat APIs.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider represents an inference provider.
type Provider string

const (
	HuggingFace Provider = "huggingface"
	OpenAI      Provider = "openai"
)

// ErrModelLoading is returned when the provider reports that the model is
// still being loaded and cannot serve requests yet.
var ErrModelLoading = errors.New("model is loading")

// APIError is a non-success reply from a provider.
type APIError struct {
	Provider   Provider
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// Config holds configuration for an inference client.
type Config struct {
	Provider  Provider      `yaml:"provider" json:"provider" env:"SUMMARIZER_PROVIDER" validate:"oneof=huggingface openai"`
	Model     string        `yaml:"model" json:"model" env:"SUMMARIZER_MODEL"`
	APIKey    string        `yaml:"api_key" json:"api_key" env:"HF_API_KEY"`
	BaseURL   string        `yaml:"base_url" json:"base_url" env:"SUMMARIZER_BASE_URL"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" env:"SUMMARIZER_TIMEOUT"`
	MinLength int           `yaml:"min_length" json:"min_length"`
	MaxLength int           `yaml:"max_length" json:"max_length"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: HuggingFace,
		Model:    "facebook/bart-large-cnn",
		Timeout:  60 * time.Second,
	}
}

// Shape describes which reply layout a summary was extracted from.
type Shape string

const (
	ShapeObjectList Shape = "object_list"
	ShapeObject     Shape = "object"
	ShapeString     Shape = "string"
	ShapeStringList Shape = "string_list"
	// ShapeRaw means no known layout matched and Summary holds a truncated dump
	// of the raw reply.
	ShapeRaw Shape = "raw"
)

// Client is the unified interface for summarization calls.
type Client interface {
	// Summarize sends text to the model and returns its summary.
	Summarize(ctx context.Context, req *Request) (*Response, error)

	// Provider returns the name of the provider.
	Provider() Provider

	// Close releases any resources held by the client.
	Close() error
}

// Request holds the parameters for one summarization.
type Request struct {
	Text      string `json:"text"`
	MinLength int    `json:"min_length,omitempty"`
	MaxLength int    `json:"max_length,omitempty"`
}

// Response holds the result of a summarization.
type Response struct {
	Summary   string `json:"summary"`
	Shape     Shape  `json:"shape"`
	Model     string `json:"model"`
	LatencyMs int64  `json:"latency_ms"`
}

// NewClient creates a new inference client based on the provided config.
func NewClient(cfg Config) (Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	switch cfg.Provider {
	case HuggingFace, "":
		return newHuggingFaceClient(cfg)
	case OpenAI:
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported inference provider: %s", cfg.Provider)
	}
}
