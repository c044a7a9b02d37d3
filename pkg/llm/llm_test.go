package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNewClient_InvalidProvider(t *testing.T) {
	_, err := NewClient(Config{Provider: "invalid", APIKey: "test"})
	if err == nil {
		t.Fatal("expected error for invalid provider")
	}
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	if _, err := NewClient(Config{Provider: OpenAI}); err == nil {
		t.Fatal("expected error for openai without API key")
	}
}

func TestHuggingFace_AnonymousWithoutKey(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid credentials in Authorization header"}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{Provider: HuggingFace, BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err = client.Summarize(context.Background(), &Request{Text: "text"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if gotAuth != "" {
		t.Fatalf("expected no Authorization header, got %q", gotAuth)
	}
}

func TestNewClient_DefaultsToHuggingFace(t *testing.T) {
	client, err := NewClient(Config{APIKey: "hf_test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer client.Close()
	if client.Provider() != HuggingFace {
		t.Fatalf("expected huggingface provider, got %s", client.Provider())
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != HuggingFace {
		t.Fatalf("expected huggingface, got %s", cfg.Provider)
	}
	if cfg.Timeout.Seconds() != 60 {
		t.Fatalf("expected 60s timeout, got %v", cfg.Timeout)
	}
}

func TestNormalizeSummary(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantText  string
		wantShape Shape
	}{
		{"object list", `[{"summary_text":"A short summary."}]`, "A short summary.", ShapeObjectList},
		{"single object", `{"summary_text":"Object summary."}`, "Object summary.", ShapeObject},
		{"bare string", `"Just a string."`, "Just a string.", ShapeString},
		{"string list", `["first","second"]`, "first", ShapeStringList},
		{"unknown object", `{"foo": 1}`, `{"foo":1}`, ShapeRaw},
		{"empty list", `[]`, `[]`, ShapeRaw},
		{"list without summary_text", `[{"generated_text":"x"}]`, `[{"generated_text":"x"}]`, ShapeRaw},
		{"not json", `plain words`, `plain words`, ShapeRaw},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, shape := NormalizeSummary([]byte(tt.input))
			if got != tt.wantText {
				t.Errorf("NormalizeSummary(%s) = %q, want %q", tt.input, got, tt.wantText)
			}
			if shape != tt.wantShape {
				t.Errorf("NormalizeSummary(%s) shape = %s, want %s", tt.input, shape, tt.wantShape)
			}
		})
	}
}

func TestNormalizeSummary_TruncatesRawDump(t *testing.T) {
	payload, _ := json.Marshal(map[string]string{"unexpected": strings.Repeat("é", 3000)})
	got, shape := NormalizeSummary(payload)
	if shape != ShapeRaw {
		t.Fatalf("expected raw shape, got %s", shape)
	}
	if n := utf8.RuneCountInString(got); n != MaxRawSummary {
		t.Fatalf("expected %d characters, got %d", MaxRawSummary, n)
	}
	if !utf8.ValidString(got) {
		t.Fatal("truncation split a multi-byte character")
	}
}

func TestHuggingFace_Summarize(t *testing.T) {
	var gotAuth, gotPath string
	var gotBody hfRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		w.Write([]byte(`[{"summary_text":"Ohio passes a budget."}]`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{Provider: HuggingFace, APIKey: "hf_secret", BaseURL: srv.URL, Model: "facebook/bart-large-cnn"})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Summarize(context.Background(), &Request{Text: "The long article body."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Summary != "Ohio passes a budget." {
		t.Fatalf("unexpected summary %q", resp.Summary)
	}
	if resp.Shape != ShapeObjectList {
		t.Fatalf("unexpected shape %s", resp.Shape)
	}
	if gotAuth != "Bearer hf_secret" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotPath != "/models/facebook/bart-large-cnn" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotBody.Inputs != "The long article body." {
		t.Fatalf("expected full text as inputs, got %q", gotBody.Inputs)
	}
}

func TestHuggingFace_ModelLoading(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"Model facebook/bart-large-cnn is currently loading","estimated_time":20.0}`))
	}))
	defer srv.Close()

	client, _ := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := client.Summarize(context.Background(), &Request{Text: "text"})
	if !errors.Is(err, ErrModelLoading) {
		t.Fatalf("expected ErrModelLoading, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected wrapped APIError with 503, got %v", err)
	}
}

func TestHuggingFace_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"Authorization header is invalid"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, _ := NewClient(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := client.Summarize(context.Background(), &Request{Text: "text"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Message != "Authorization header is invalid" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
	if errors.Is(err, ErrModelLoading) {
		t.Fatal("401 must not be reported as model loading")
	}
}

func TestOpenAI_Summarize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"model":"gpt-4o-mini","choices":[{"message":{"content":"<think>hmm</think>\nA tidy summary."}}]}`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{Provider: OpenAI, APIKey: "sk", BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}
	resp, err := client.Summarize(context.Background(), &Request{Text: "body"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Summary != "A tidy summary." {
		t.Fatalf("unexpected summary %q", resp.Summary)
	}
}

func TestStripThinkTags(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no tags", "Hello world", "Hello world"},
		{"with think tags", "<think>reasoning here</think>Actual response", "Actual response"},
		{"multiline think", "<think>\nstep 1\nstep 2\n</think>\nFinal answer", "Final answer"},
		{"empty content", "", ""},
		{"only think", "<think>only thinking</think>", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := stripThinkTags(tt.input)
			if got != tt.expected {
				t.Errorf("stripThinkTags(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
