package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func completionPayload(content string) map[string]any {
	return map[string]any{
		"choices": []any{
			map[string]any{
				"message": map[string]any{"content": content},
			},
		},
		"usage": map[string]any{"prompt_tokens": 12, "completion_tokens": 34},
	}
}

func TestClientGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test" {
			t.Fatalf("unexpected authorization header %q", got)
		}
		var req chatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Fatalf("expected system+user messages, got %+v", req.Messages)
		}
		if err := json.NewEncoder(w).Encode(completionPayload("# Lesson Plan\n\n## Learning Objectives")); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	resp, err := client.Generate(context.Background(), Request{
		SystemPrompt: "You are a curriculum designer.",
		Prompt:       "Create a lesson plan on photosynthesis",
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !strings.Contains(resp.Content, "Learning Objectives") {
		t.Fatalf("unexpected content %q", resp.Content)
	}
	if resp.Model != "demo-model" {
		t.Fatalf("unexpected model %q", resp.Model)
	}
	if resp.Usage.PromptTokens != 12 || resp.Usage.CompletionTokens != 34 {
		t.Fatalf("usage not captured: %+v", resp.Usage)
	}
}

func TestClientGenerateRequiresPrompt(t *testing.T) {
	client := NewClient(Config{APIKey: "test", Model: "demo-model"})
	if _, err := client.Generate(context.Background(), Request{}); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}

func TestClientRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "slow down", http.StatusTooManyRequests)
			return
		}
		if err := json.NewEncoder(w).Encode(completionPayload("# Worksheet")); err != nil {
			t.Fatalf("encode response: %v", err)
		}
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
	)
	resp, err := client.Generate(context.Background(), Request{Prompt: "worksheet on fractions"})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 calls, got %d", calls.Load())
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected one Retry-After sleep of 1s, got %v", slept)
	}
	if !strings.Contains(resp.Content, "Worksheet") {
		t.Fatalf("unexpected content %q", resp.Content)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(
		Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"},
		WithSleeper(func(time.Duration) {}),
	)
	if _, err := client.Generate(context.Background(), Request{Prompt: "anything"}); err == nil {
		t.Fatal("expected error for 401 response")
	}
	if calls.Load() != 1 {
		t.Fatalf("401 should not be retried, got %d calls", calls.Load())
	}
}

func TestCompleteJSONRequiresPrompts(t *testing.T) {
	client := NewClient(Config{APIKey: "test", Model: "demo-model"})
	if _, err := client.CompleteJSON(context.Background(), "", "user"); err == nil {
		t.Fatal("expected error for empty system prompt")
	}
	if _, err := client.CompleteJSON(context.Background(), "system", ""); err == nil {
		t.Fatal("expected error for empty user prompt")
	}
}

func TestDecodeLLMJSON(t *testing.T) {
	type payload struct {
		Score  int  `json:"score"`
		Passed bool `json:"passed"`
	}

	cases := []struct {
		name    string
		content string
	}{
		{"plain", `{"score": 4, "passed": true}`},
		{"code fence", "```json\n{\"score\": 4, \"passed\": true}\n```"},
		{"leading prose", "Here is the evaluation:\n{\"score\": 4, \"passed\": true}"},
	}
	for _, tc := range cases {
		var parsed payload
		if err := DecodeLLMJSON(tc.content, &parsed); err != nil {
			t.Fatalf("%s: DecodeLLMJSON: %v", tc.name, err)
		}
		if parsed.Score != 4 || !parsed.Passed {
			t.Fatalf("%s: unexpected payload %+v", tc.name, parsed)
		}
	}

	var parsed payload
	if err := DecodeLLMJSON("", &parsed); err == nil {
		t.Fatal("empty payload should error")
	}
	if err := DecodeLLMJSON("not json at all", &parsed); err == nil {
		t.Fatal("non-JSON payload should error")
	}
}
