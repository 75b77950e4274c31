package openaichat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
)

func TestCompleteSendsMessagesAndAuth(t *testing.T) {
	var gotAuth string
	var gotRequest chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "the answer"}},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "sk-test", "deepseek-chat", nil)
	text, err := c.Complete(context.Background(), "be careful", "what is the rule?")
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if text != "the answer" {
		t.Fatalf("unexpected content %q", text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotRequest.Model != "deepseek-chat" {
		t.Fatalf("unexpected model %q", gotRequest.Model)
	}
	if len(gotRequest.Messages) != 2 || gotRequest.Messages[0].Role != "system" || gotRequest.Messages[1].Role != "user" {
		t.Fatalf("unexpected messages %+v", gotRequest.Messages)
	}
	if gotRequest.Temperature != defaultTemperature || gotRequest.MaxTokens != defaultMaxTokens {
		t.Fatalf("unexpected sampling params %+v", gotRequest)
	}
}

func TestCompleteRateLimitIsTemporary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := New(srv.URL, "sk-test", "deepseek-chat", nil)
	_, err := c.Complete(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
}

func TestCompleteAPIErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "invalid model", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "sk-test", "nope", nil)
	_, err := c.Complete(context.Background(), "sys", "user")
	if err == nil {
		t.Fatal("expected error from API error body")
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("invalid request should not be temporary, got %v", err)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := New(srv.URL, "sk-test", "deepseek-chat", nil)
	if _, err := c.Complete(context.Background(), "sys", "user"); err == nil {
		t.Fatal("expected error on empty choices")
	}
}
