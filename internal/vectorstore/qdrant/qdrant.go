package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"travelchat/internal/domain"
	"travelchat/internal/embedding"
	"travelchat/internal/vectorstore"
)

// Store is a minimal REST client to Qdrant. Each collection name maps to one
// Qdrant collection using cosine distance.
type Store struct {
	url         string
	apiKey      string
	client      *http.Client
	newEmbedder func() embedding.Embedder
}

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func NewStore(cfg Config, newEmbedder func() embedding.Embedder) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:         strings.TrimRight(cfg.URL, "/"),
		apiKey:      cfg.APIKey,
		client:      &http.Client{Timeout: timeout},
		newEmbedder: newEmbedder,
	}
}

// Open returns the collection if Qdrant knows it.
func (s *Store) Open(ctx context.Context, name string) (vectorstore.Collection, error) {
	if err := s.do(ctx, http.MethodGet, s.collectionURL(name), nil, nil); err != nil {
		return nil, err
	}
	return &Collection{store: s, name: name, embedder: s.newEmbedder(), exists: true}, nil
}

// GetOrCreate returns the collection; a missing one is created on first Add,
// once the vector dimension is known.
func (s *Store) GetOrCreate(ctx context.Context, name string) (vectorstore.Collection, error) {
	c, err := s.Open(ctx, name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return nil, err
	}
	return &Collection{store: s, name: name, embedder: s.newEmbedder()}, nil
}

func (s *Store) collectionURL(name string) string {
	return fmt.Sprintf("%s/collections/%s", s.url, url.PathEscape(name))
}

// Collection is a handle to one Qdrant collection.
type Collection struct {
	store    *Store
	name     string
	embedder embedding.Embedder

	mu     sync.Mutex
	exists bool
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Add embeds and upserts chunks, creating the collection if needed.
func (c *Collection) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	if err := c.embedder.Prepare(texts); err != nil {
		return fmt.Errorf("prepare embedder: %w", err)
	}
	vectors, err := embedding.EmbedAll(ctx, c.embedder, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}
	points := make([]map[string]any, len(chunks))
	dimension := 0
	for i, vec := range vectors {
		dimension = len(vec)
		points[i] = map[string]any{
			"id":     PointID(chunks[i].ChunkID),
			"vector": vec,
			"payload": map[string]any{
				"document_id": chunks[i].DocumentID,
				"chunk_id":    chunks[i].ChunkID,
				"index":       chunks[i].Index,
				"text":        chunks[i].Text,
			},
		}
	}
	if err := c.ensure(ctx, dimension); err != nil {
		return err
	}
	body := map[string]any{"points": points}
	return c.store.do(ctx, http.MethodPut, c.store.collectionURL(c.name)+"/points?wait=true", body, nil)
}

func (c *Collection) ensure(ctx context.Context, dimension int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exists {
		return nil
	}
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := c.store.do(ctx, http.MethodPut, c.store.collectionURL(c.name), body, nil); err != nil {
		return err
	}
	c.exists = true
	return nil
}

// Query embeds text and returns the payload texts of the topK nearest points.
// Points without a text payload are reported as nil entries.
func (c *Collection) Query(ctx context.Context, text string, topK int) (domain.QueryResult, error) {
	if topK <= 0 {
		topK = 3
	}
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("embed query: %w", err)
	}
	req := map[string]any{
		"vector":       vec,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := c.store.do(ctx, http.MethodPost, c.store.collectionURL(c.name)+"/points/search", req, &resp); err != nil {
		return domain.QueryResult{}, err
	}
	docs := make([]*string, 0, len(resp.Result))
	for _, r := range resp.Result {
		if v, ok := r.Payload["text"].(string); ok {
			docs = append(docs, domain.Text(v))
		} else {
			docs = append(docs, nil)
		}
	}
	return domain.QueryResult{Documents: domain.FlatDocuments(docs...)}, nil
}

// PointID derives a stable Qdrant point id from a chunk id.
// Qdrant accepts only unsigned integers and UUIDs.
func PointID(chunkID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(chunkID)).String()
}

func (s *Store) do(ctx context.Context, method, endpoint string, body any, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: qdrant %s %s", vectorstore.ErrCollectionNotFound, method, endpoint)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s failed: %s", method, endpoint, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
