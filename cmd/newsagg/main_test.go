package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/RobinCoderZhao/newsagg/internal/newsagg/pipeline"
)

func TestWriteNews_EmptyGroupedIsObject(t *testing.T) {
	var buf bytes.Buffer
	if err := writeNews(&buf, &pipeline.Result{}, true); err != nil {
		t.Fatalf("writeNews() error = %v", err)
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if got := string(out["grouped"]); got != "{}" {
		t.Fatalf("grouped = %s, want {}", got)
	}
	if _, ok := out["articles"]; ok {
		t.Fatal("grouped output must not carry articles")
	}
}

func TestWriteNews_EmptyFlatIsArray(t *testing.T) {
	var buf bytes.Buffer
	if err := writeNews(&buf, &pipeline.Result{}, false); err != nil {
		t.Fatalf("writeNews() error = %v", err)
	}

	var out map[string]json.RawMessage
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	if got := string(out["articles"]); got != "[]" {
		t.Fatalf("articles = %s, want []", got)
	}
}
