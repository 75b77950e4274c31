// Package inference talks to the embedding/rerank inference service. Both
// calls are opaque scoring functions: text in, vector or scalar out.
package inference

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lyyyylyllll123-dotcom/sg-rental-rag/internal/infrastructure/resilience"
)

type Client struct {
	baseURL     string
	embedModel  string
	rerankModel string
	httpClient  *http.Client
	executor    *resilience.Executor
}

func New(baseURL, embedModel, rerankModel string, executor *resilience.Executor) *Client {
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		embedModel:  embedModel,
		rerankModel: rerankModel,
		httpClient:  &http.Client{Timeout: 60 * time.Second},
		executor:    executor,
	}
}

// ModelID identifies the embedding model; the vector index stores it so
// that vectors from a different model are never mixed in.
func (c *Client) ModelID() string {
	return c.embedModel
}

func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model": c.embedModel,
		"input": texts,
	}
	var response struct {
		Embeddings [][]float32 `json:"embeddings"`
	}
	if err := c.call(ctx, "/v1/embed", "embed", request, &response); err != nil {
		return nil, err
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("embed returned %d vectors for %d texts", len(response.Embeddings), len(texts))
	}
	return response.Embeddings, nil
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return vectors[0], nil
}

// Rerank scores every (query, passage) pair with the cross-encoder and
// returns one score per passage, in input order.
func (c *Client) Rerank(ctx context.Context, query string, passages []string) ([]float64, error) {
	if len(passages) == 0 {
		return nil, nil
	}

	request := map[string]any{
		"model":    c.rerankModel,
		"query":    query,
		"passages": passages,
	}
	var response struct {
		Scores []float64 `json:"scores"`
	}
	if err := c.call(ctx, "/v1/rerank", "rerank", request, &response); err != nil {
		return nil, err
	}
	if len(response.Scores) != len(passages) {
		return nil, fmt.Errorf("rerank returned %d scores for %d passages", len(response.Scores), len(passages))
	}
	return response.Scores, nil
}

func (c *Client) call(ctx context.Context, path, operation string, request, response any) error {
	fn := func(callCtx context.Context) error {
		return c.postJSON(callCtx, path, request, response, operation)
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "inference."+operation, fn, classifyInferenceError)
	} else {
		err = fn(ctx)
	}
	return wrapTemporaryIfNeeded(operation, err)
}
