package inference

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/core/domain"
)

func TestEmbedSendsModelAndReturnsVectors(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embed" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"embeddings": [][]float32{{0.1, 0.2}, {0.3, 0.4}},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, "mini-lm", "marco", nil)
	vectors, err := c.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 2 || vectors[1][0] != 0.3 {
		t.Fatalf("unexpected vectors %v", vectors)
	}
	if gotBody["model"] != "mini-lm" {
		t.Fatalf("expected embed model in request, got %v", gotBody["model"])
	}
}

func TestEmbedCountMismatchFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{{0.1}}})
	}))
	defer srv.Close()

	c := New(srv.URL, "mini-lm", "marco", nil)
	if _, err := c.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected error on vector count mismatch")
	}
}

func TestRerankReturnsScoresInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/rerank" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{"scores": []float64{0.9, 0.1, 0.5}})
	}))
	defer srv.Close()

	c := New(srv.URL, "mini-lm", "marco", nil)
	scores, err := c.Rerank(context.Background(), "question", []string{"p1", "p2", "p3"})
	if err != nil {
		t.Fatalf("Rerank() error = %v", err)
	}
	if len(scores) != 3 || scores[0] != 0.9 || scores[2] != 0.5 {
		t.Fatalf("unexpected scores %v", scores)
	}
}

func TestServerErrorIsTemporary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, "mini-lm", "marco", nil)
	_, err := c.EmbedQuery(context.Background(), "q")
	if err == nil {
		t.Fatal("expected error")
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected wrapped status error, got %v", err)
	}
}

func TestClientErrorIsNotTemporary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad input", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(srv.URL, "mini-lm", "marco", nil)
	_, err := c.Rerank(context.Background(), "q", []string{"p"})
	if err == nil {
		t.Fatal("expected error")
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("4xx should not be temporary, got %v", err)
	}
}

func TestEmptyInputSkipsRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	}))
	defer srv.Close()

	c := New(srv.URL, "mini-lm", "marco", nil)
	if vectors, err := c.Embed(context.Background(), nil); err != nil || vectors != nil {
		t.Fatalf("Embed(nil) = %v, %v", vectors, err)
	}
	if scores, err := c.Rerank(context.Background(), "q", nil); err != nil || scores != nil {
		t.Fatalf("Rerank(nil) = %v, %v", scores, err)
	}
}
