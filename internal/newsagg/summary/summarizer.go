// Package summary turns article text into short summaries through a hosted
// model, with a process-wide cache in front of it.
package summary

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/RobinCoderZhao/newsagg/pkg/llm"
)

// DefaultTimeout bounds a single summarization call.
const DefaultTimeout = 60 * time.Second

// Summarizer calls the inference provider for one text at a time and never
// fails: on any error the input text is handed back unchanged.
type Summarizer struct {
	client  llm.Client
	limiter *rate.Limiter
	timeout time.Duration
	logger  *slog.Logger

	calls    atomic.Int64
	degraded atomic.Int64
}

// SummarizerOption configures a Summarizer.
type SummarizerOption func(*Summarizer)

// WithRateLimit gates provider calls to rpm requests per minute with the given
// burst. A non-positive rpm disables limiting.
func WithRateLimit(rpm, burst int) SummarizerOption {
	return func(s *Summarizer) {
		if rpm <= 0 {
			s.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), burst)
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) SummarizerOption {
	return func(s *Summarizer) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithSummarizerLogger sets the logger used for degraded calls.
func WithSummarizerLogger(l *slog.Logger) SummarizerOption {
	return func(s *Summarizer) { s.logger = l }
}

// NewSummarizer wraps an inference client.
func NewSummarizer(client llm.Client, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{
		client:  client,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize returns a summary of text. ok is false when the result is degraded:
// either the original text after a failed call, or a truncated dump of a reply
// whose shape was not recognized.
func (s *Summarizer) Summarize(ctx context.Context, text string) (summary string, ok bool) {
	s.calls.Add(1)

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return s.fallback(text, "rate limiter wait", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Summarize(ctx, &llm.Request{Text: text})
	if err != nil {
		if errors.Is(err, llm.ErrModelLoading) {
			return s.fallback(text, "model loading", err)
		}
		return s.fallback(text, "provider call", err)
	}

	if resp.Shape == llm.ShapeRaw {
		s.degraded.Add(1)
		s.logger.Warn("unrecognized summarization reply",
			"provider", s.client.Provider(),
			"model", resp.Model,
			"reply", resp.Summary,
		)
		return resp.Summary, false
	}
	return resp.Summary, true
}

func (s *Summarizer) fallback(text, stage string, err error) (string, bool) {
	s.degraded.Add(1)
	s.logger.Warn("summarization degraded, using original text",
		"provider", s.client.Provider(),
		"stage", stage,
		"text_len", len(text),
		"error", err,
	)
	return text, false
}

// SummarizerStats reports call counters.
type SummarizerStats struct {
	Calls    int64 `json:"calls"`
	Degraded int64 `json:"degraded"`
}

// Stats returns a snapshot of the call counters.
func (s *Summarizer) Stats() SummarizerStats {
	return SummarizerStats{
		Calls:    s.calls.Load(),
		Degraded: s.degraded.Load(),
	}
}
