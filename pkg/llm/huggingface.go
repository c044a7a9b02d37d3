package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// huggingfaceClient implements the Client interface for the Hugging Face
// Inference API summarization task.
type huggingfaceClient struct {
	cfg    Config
	http   *http.Client
	apiKey string
	base   string
}

// newHuggingFaceClient accepts an empty API key; requests are then sent
// anonymously and usually rejected, which callers treat as a degraded call.
func newHuggingFaceClient(cfg Config) (Client, error) {
	if cfg.Model == "" {
		cfg.Model = "facebook/bart-large-cnn"
	}
	base := "https://router.huggingface.co/hf-inference"
	if cfg.BaseURL != "" {
		base = strings.TrimRight(cfg.BaseURL, "/")
	}
	return &huggingfaceClient{
		cfg:    cfg,
		apiKey: cfg.APIKey,
		base:   base,
		http:   &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type hfRequest struct {
	Inputs     string        `json:"inputs"`
	Parameters *hfParameters `json:"parameters,omitempty"`
}

type hfParameters struct {
	MinLength int `json:"min_length,omitempty"`
	MaxLength int `json:"max_length,omitempty"`
}

type hfErrorResponse struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

func (c *huggingfaceClient) Summarize(ctx context.Context, req *Request) (*Response, error) {
	start := time.Now()

	hReq := hfRequest{Inputs: req.Text}
	minLen, maxLen := req.MinLength, req.MaxLength
	if minLen == 0 {
		minLen = c.cfg.MinLength
	}
	if maxLen == 0 {
		maxLen = c.cfg.MaxLength
	}
	if minLen > 0 || maxLen > 0 {
		hReq.Parameters = &hfParameters{MinLength: minLen, MaxLength: maxLen}
	}

	body, err := json.Marshal(hReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.base + "/models/" + (&url.URL{Path: c.cfg.Model}).EscapedPath()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, hfError(httpResp.StatusCode, respBody)
	}

	summary, shape := NormalizeSummary(respBody)
	return &Response{
		Summary:   summary,
		Shape:     shape,
		Model:     c.cfg.Model,
		LatencyMs: time.Since(start).Milliseconds(),
	}, nil
}

func hfError(status int, body []byte) error {
	msg := strings.TrimSpace(string(body))
	var errResp hfErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		msg = errResp.Error
	}
	apiErr := &APIError{Provider: HuggingFace, StatusCode: status, Message: msg}
	if status == http.StatusServiceUnavailable && strings.Contains(strings.ToLower(msg), "loading") {
		return fmt.Errorf("%w (estimated %.0fs): %w", ErrModelLoading, errResp.EstimatedTime, apiErr)
	}
	return apiErr
}

func (c *huggingfaceClient) Provider() Provider {
	return HuggingFace
}

func (c *huggingfaceClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
