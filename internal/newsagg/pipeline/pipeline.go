// Package pipeline fetches a batch of articles, optionally summarizes them and
// categorizes every one, then shapes the batch as a flat list or by category.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/RobinCoderZhao/newsagg/internal/newsagg/classify"
	"github.com/RobinCoderZhao/newsagg/internal/newsagg/sources"
)

// SummaryCache is the summary lookup the pipeline delegates to. It must never
// fail; degraded lookups return the input text.
type SummaryCache interface {
	Get(ctx context.Context, text string) string
}

// Options selects the optional stages of a run.
type Options struct {
	Summarize bool
	Group     bool
}

// Enriched is an article with the fields the pipeline derives from it.
type Enriched struct {
	sources.Article
	Category classify.Category `json:"category"`
	Summary  *string           `json:"summary,omitempty"`
}

// Result is the output of one run. Exactly one of Articles and Grouped is set.
type Result struct {
	Count    int                              `json:"count"`
	Articles []Enriched                       `json:"articles,omitempty"`
	Grouped  map[classify.Category][]Enriched `json:"grouped,omitempty"`
}

// Pipeline wires the search provider, the summary cache and the categorizer.
type Pipeline struct {
	source sources.Searcher
	cache  SummaryCache
	logger *slog.Logger
}

// New creates a pipeline. cache may be nil when summaries are never requested.
func New(source sources.Searcher, cache SummaryCache) *Pipeline {
	return &Pipeline{
		source: source,
		cache:  cache,
		logger: slog.Default(),
	}
}

// WithLogger sets the logger and returns the pipeline.
func (p *Pipeline) WithLogger(l *slog.Logger) *Pipeline {
	p.logger = l
	return p
}

// Run executes the pipeline once. The only error it returns comes from the
// search provider and wraps sources.ErrUpstreamUnavailable.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()

	raw, err := p.source.Search(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}
	p.logger.Info("fetched articles", "source", p.source.Name(), "count", len(raw))

	var enriched []Enriched
	if opts.Summarize && p.cache != nil {
		enriched = p.summarizeAll(ctx, raw)
	} else {
		enriched = categorizeAll(raw)
	}

	result := &Result{Count: len(raw)}
	if opts.Group {
		result.Grouped = Group(enriched)
	} else {
		result.Articles = enriched
	}

	p.logger.Info("pipeline complete",
		"count", result.Count,
		"summarize", opts.Summarize,
		"group", opts.Group,
		"duration", time.Since(start),
	)
	return result, nil
}

func categorizeAll(raw []sources.Article) []Enriched {
	out := make([]Enriched, len(raw))
	for i, a := range raw {
		out[i] = Enriched{Article: a, Category: classify.Categorize(a)}
	}
	return out
}

// summarizeAll handles one article at a time in input order, so a request never
// has more than one summarization call in flight.
func (p *Pipeline) summarizeAll(ctx context.Context, raw []sources.Article) []Enriched {
	out := make([]Enriched, 0, len(raw))
	for _, a := range raw {
		summary := p.cache.Get(ctx, a.SummarizableText())
		out = append(out, Enriched{
			Article:  a,
			Category: classify.Categorize(a),
			Summary:  &summary,
		})
	}
	return out
}

// Group partitions articles by category, keeping their relative order within
// each bucket. Categories without articles are absent.
func Group(articles []Enriched) map[classify.Category][]Enriched {
	grouped := make(map[classify.Category][]Enriched)
	for _, a := range articles {
		grouped[a.Category] = append(grouped[a.Category], a)
	}
	return grouped
}
