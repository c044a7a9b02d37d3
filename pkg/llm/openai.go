package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// openaiClient implements the Client interface for OpenAI-compatible APIs by
// prompting a chat model to summarize.
type openaiClient struct {
	cfg    Config
	http   *http.Client
	apiKey string
	base   string
}

func newOpenAIClient(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.Model == "" || strings.Contains(cfg.Model, "/") {
		cfg.Model = "gpt-4o-mini"
	}
	base := "https://api.openai.com/v1"
	if cfg.BaseURL != "" {
		base = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &openaiClient{
		cfg:    cfg,
		apiKey: cfg.APIKey,
		base:   base,
		http:   &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type openaiRequest struct {
	Model     string          `json:"model"`
	Messages  []openaiMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Model string `json:"model"`
}

type openaiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

const summarizeSystemPrompt = "You are a news editor. Summarize the article the user sends in two or three plain sentences. " +
	"Reply with the summary only, no preamble and no markdown."

func (c *openaiClient) Summarize(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()

	oReq := openaiRequest{
		Model: c.cfg.Model,
		Messages: []openaiMessage{
			{Role: "system", Content: summarizeSystemPrompt},
			{Role: "user", Content: req.Text},
		},
	}
	if req.MaxLength > 0 {
		oReq.MaxTokens = req.MaxLength
	} else if c.cfg.MaxLength > 0 {
		oReq.MaxTokens = c.cfg.MaxLength
	}

	body, err := json.Marshal(oReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		msg := string(respBody)
		var errResp openaiErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			msg = errResp.Error.Message
		}
		return nil, &APIError{Provider: OpenAI, StatusCode: httpResp.StatusCode, Message: msg}
	}

	var oResp openaiResponse
	if err := json.Unmarshal(respBody, &oResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(oResp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	return &Response{
		Summary:   stripThinkTags(oResp.Choices[0].Message.Content),
		Shape:     ShapeString,
		Model:     oResp.Model,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func (c *openaiClient) Provider() Provider {
	return OpenAI
}

func (c *openaiClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// thinkTagRe matches <think>...</think> blocks (including multiline).
var thinkTagRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// stripThinkTags removes <think>...</think> reasoning blocks that some
// OpenAI-compatible reasoning models prepend to their answer.
func stripThinkTags(content string) string {
	stripped := thinkTagRe.ReplaceAllString(content, "")
	return strings.TrimSpace(stripped)
}
