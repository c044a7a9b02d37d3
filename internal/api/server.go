// Package api provides the REST API server for the news aggregator.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/RobinCoderZhao/newsagg/internal/newsagg/pipeline"
	"github.com/RobinCoderZhao/newsagg/internal/newsagg/summary"
)

// NewsPipeline runs one fetch/summarize/categorize pass.
type NewsPipeline interface {
	Run(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
}

// CacheStatser reports summary cache counters.
type CacheStatser interface {
	Stats() summary.CacheStats
}

// SummarizerStatser reports summarizer counters.
type SummarizerStatser interface {
	Stats() summary.SummarizerStats
}

// Server holds the dependencies for the API.
type Server struct {
	news       NewsPipeline
	cache      CacheStatser
	summarizer SummarizerStatser
	corsOrigin string
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStats exposes cache and summarizer counters on the health endpoint.
// Either may be nil.
func WithStats(cache CacheStatser, summarizer SummarizerStatser) Option {
	return func(s *Server) {
		s.cache = cache
		s.summarizer = summarizer
	}
}

// WithCORSOrigin sets the allowed browser origin. The default is "*".
func WithCORSOrigin(origin string) Option {
	return func(s *Server) {
		if origin != "" {
			s.corsOrigin = origin
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates a new API Server instance.
func NewServer(news NewsPipeline, opts ...Option) *Server {
	s := &Server{
		news:       news,
		corsOrigin: "*",
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes returns the configured http.Handler for the API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/news", s.handleNews())
	mux.HandleFunc("GET /api/health", s.handleHealth())

	return s.withRequestID(s.withLogging(s.withCORS(mux)))
}

// --- Helpers ---

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]any{"ok": false, "error": message})
}
