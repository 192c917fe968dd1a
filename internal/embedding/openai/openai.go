package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

// Client is an OpenAI-compatible embeddings client implementing the Embedder interface.
// One Client may be shared by every collection and used concurrently.
type Client struct {
	model    string
	embedder embeddings.Embedder

	mu        sync.Mutex
	dimension int
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
	BatchSize int
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 32
	}
	llm, err := lcopenai.New(
		lcopenai.WithToken(key),
		lcopenai.WithBaseURL(cfg.BaseURL),
		lcopenai.WithEmbeddingModel(cfg.Model),
		lcopenai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
	)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	emb, err := embeddings.NewEmbedder(llm, embeddings.WithBatchSize(cfg.BatchSize))
	if err != nil {
		return nil, fmt.Errorf("create openai embedder: %w", err)
	}
	return &Client{model: cfg.Model, embedder: emb}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Prepare is not required for remote embedding. Dimension is set on first embed.
func (c *Client) Prepare(corpus []string) error { return nil }

// Dimension returns the dimensionality of the produced embedding vectors.
func (c *Client) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimension
}

// Embed returns an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	start := time.Now()
	v, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		slog.Warn("embedding failed", "model", c.model, "text_len", len(text), "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return nil, fmt.Errorf("embed: %w", err)
	}
	return c.convert(v)
}

// EmbedBatch embeds texts with EmbedDocuments, which splits them into
// requests of the configured batch size.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	start := time.Now()
	vs, err := c.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		slog.Warn("batch embedding failed", "model", c.model, "texts", len(texts), "duration_ms", time.Since(start).Milliseconds(), "error", err)
		return nil, fmt.Errorf("embed documents: %w", err)
	}
	out := make([][]float64, len(vs))
	for i, v := range vs {
		if out[i], err = c.convert(v); err != nil {
			return nil, fmt.Errorf("document %d: %w", i, err)
		}
	}
	return out, nil
}

func (c *Client) convert(v []float32) ([]float64, error) {
	if len(v) == 0 {
		return nil, errors.New("empty embedding")
	}
	c.mu.Lock()
	if c.dimension == 0 {
		c.dimension = len(v)
	}
	c.mu.Unlock()
	out := make([]float64, len(v))
	for i, f := range v {
		out[i] = float64(f)
	}
	return out, nil
}
