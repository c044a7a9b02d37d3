package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/RobinCoderZhao/newsagg/pkg/htmltext"
)

// NewsAPIConfig configures the NewsAPI /v2/everything client.
type NewsAPIConfig struct {
	APIKey   string        `yaml:"api_key" env:"NEWSAPI_KEY" validate:"required"`
	BaseURL  string        `yaml:"base_url" env:"NEWSAPI_BASE_URL" validate:"omitempty,url"`
	Query    string        `yaml:"query" env:"NEWS_QUERY" validate:"required"`
	PageSize int           `yaml:"page_size" env:"NEWS_PAGE_SIZE" validate:"min=1,max=100"`
	Language string        `yaml:"language" env:"NEWS_LANGUAGE"`
	Timeout  time.Duration `yaml:"timeout" env:"NEWSAPI_TIMEOUT"`
}

// DefaultNewsAPIConfig returns the query the service was built around.
func DefaultNewsAPIConfig() NewsAPIConfig {
	return NewsAPIConfig{
		BaseURL:  "https://newsapi.org",
		Query:    "Ohio",
		PageSize: 20,
		Timeout:  15 * time.Second,
	}
}

// NewsAPISource searches NewsAPI for a fixed query sorted by publication time.
type NewsAPISource struct {
	cfg    NewsAPIConfig
	client *http.Client
}

// NewNewsAPISource creates a new NewsAPI source.
func NewNewsAPISource(cfg NewsAPIConfig) *NewsAPISource {
	def := DefaultNewsAPIConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Query == "" {
		cfg.Query = def.Query
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = def.PageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &NewsAPISource{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *NewsAPISource) Name() string { return "NewsAPI" }

type newsAPIResponse struct {
	Status       string           `json:"status"`
	Code         string           `json:"code"`
	Message      string           `json:"message"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Source struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
	Author      string `json:"author"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Content     string `json:"content"`
}

func (s *NewsAPISource) Search(ctx context.Context) ([]Article, error) {
	q := url.Values{}
	q.Set("q", s.cfg.Query)
	q.Set("sortBy", "publishedAt")
	q.Set("pageSize", strconv.Itoa(s.cfg.PageSize))
	if s.cfg.Language != "" {
		q.Set("language", s.cfg.Language)
	}
	q.Set("apiKey", s.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.BaseURL+"/v2/everything?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "newsagg/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrUpstreamUnavailable, s.Name(), redactKey(err.Error(), s.cfg.APIKey))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", ErrUpstreamUnavailable, s.Name(), err)
	}

	var payload newsAPIResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode < 200 || resp.StatusCode > 299 || payload.Status == "error" {
		msg := payload.Message
		if msg == "" {
			msg = strings.TrimSpace(string(body))
		}
		return nil, fmt.Errorf("%w: %s returned %d: %s", ErrUpstreamUnavailable, s.Name(), resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode %s response: %v", ErrUpstreamUnavailable, s.Name(), decodeErr)
	}

	articles := make([]Article, 0, len(payload.Articles))
	for _, a := range payload.Articles {
		articles = append(articles, normalizeArticle(a))
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})
	return articles, nil
}

// truncationMarker matches the "[+1234 chars]" suffix NewsAPI appends to content.
var truncationMarker = regexp.MustCompile(`\s*\[\+\d+ chars\]\s*$`)

func normalizeArticle(a newsAPIArticle) Article {
	published, _ := time.Parse(time.RFC3339, a.PublishedAt)
	return Article{
		Source:      SourceRef{ID: a.Source.ID, Name: a.Source.Name},
		Author:      cleanField(a.Author),
		Title:       cleanField(a.Title),
		Description: cleanField(a.Description),
		URL:         a.URL,
		URLToImage:  a.URLToImage,
		PublishedAt: published,
		Content:     cleanField(truncationMarker.ReplaceAllString(a.Content, "")),
	}
}

// cleanField strips markup and drops NewsAPI's "[Removed]" placeholder.
func cleanField(s string) string {
	if strings.TrimSpace(s) == "[Removed]" {
		return ""
	}
	if htmltext.HasMarkup(s) {
		return htmltext.Plain(s)
	}
	return strings.TrimSpace(s)
}

// redactKey keeps the API key, which travels in the query string, out of
// error messages that end up in responses and logs.
func redactKey(msg, key string) string {
	if key == "" {
		return msg
	}
	return strings.ReplaceAll(msg, key, "REDACTED")
}
