// Package sources defines the article model and the news search provider
// client the aggregator reads from.
package sources

import (
	"context"
	"errors"
	"time"
)

// ErrUpstreamUnavailable is wrapped by every search failure: an unreachable
// provider, a non-success status or an error payload.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// SourceRef identifies the publisher of an article.
type SourceRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Article represents a single news article as returned by the search provider.
type Article struct {
	Source      SourceRef `json:"source"`
	Author      string    `json:"author,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `json:"url"`
	URLToImage  string    `json:"urlToImage,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
	Content     string    `json:"content,omitempty"`
}

// SummarizableText returns the text a summary should be computed from: the
// description, else the content, else the title, else "".
func (a Article) SummarizableText() string {
	switch {
	case a.Description != "":
		return a.Description
	case a.Content != "":
		return a.Content
	default:
		return a.Title
	}
}

// Searcher is implemented by news search providers.
type Searcher interface {
	// Name returns the human-readable name of the provider.
	Name() string

	// Search runs the configured query and returns articles, newest first.
	Search(ctx context.Context) ([]Article, error)
}
