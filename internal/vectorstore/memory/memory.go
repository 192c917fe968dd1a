package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"travelchat/internal/domain"
	"travelchat/internal/embedding"
	"travelchat/internal/embedding/tfidf"
	"travelchat/internal/vectorstore"
)

// vocabulary is implemented by embedders whose vectors depend on the corpus.
type vocabulary interface {
	Snapshot() tfidf.State
	Restore(tfidf.State) error
}

// Store is a simple in-memory vector store using brute-force cosine similarity.
// With a non-empty directory every collection is persisted as one JSON file.
type Store struct {
	mu          sync.Mutex
	dir         string
	newEmbedder func() embedding.Embedder
	collections map[string]*Collection
}

// NewStore creates a store. dir may be empty to keep collections in memory only.
func NewStore(dir string, newEmbedder func() embedding.Embedder) *Store {
	return &Store{dir: dir, newEmbedder: newEmbedder, collections: make(map[string]*Collection)}
}

// Open returns a collection created earlier in this process or persisted in dir.
func (s *Store) Open(_ context.Context, name string) (vectorstore.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open(name)
}

// GetOrCreate returns the named collection, creating an empty one if missing.
func (s *Store) GetOrCreate(_ context.Context, name string) (vectorstore.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, err := s.open(name)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, vectorstore.ErrCollectionNotFound) {
		return nil, err
	}
	nc := &Collection{name: name, path: s.path(name), embedder: s.newEmbedder()}
	s.collections[name] = nc
	return nc, nil
}

func (s *Store) open(name string) (*Collection, error) {
	if c, ok := s.collections[name]; ok {
		return c, nil
	}
	path := s.path(name)
	if path == "" {
		return nil, fmt.Errorf("%w: %s", vectorstore.ErrCollectionNotFound, name)
	}
	c, err := load(path, s.newEmbedder())
	if err != nil {
		return nil, err
	}
	if c.name != name {
		return nil, fmt.Errorf("snapshot %s holds collection %q", path, c.name)
	}
	s.collections[name] = c
	return c, nil
}

func (s *Store) path(name string) string {
	if s.dir == "" {
		return ""
	}
	return filepath.Join(s.dir, name+".json")
}

// Collection holds chunks and their vectors.
type Collection struct {
	mu       sync.RWMutex
	name     string
	path     string
	embedder embedding.Embedder
	chunks   []domain.Chunk
	vectors  [][]float64
}

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// Len returns the number of stored chunks.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.chunks)
}

// Add embeds and stores chunks. A chunk whose ID is already stored replaces
// the old one. Corpus-dependent embedders are re-prepared over the whole
// collection and every vector is recomputed.
func (c *Collection) Add(ctx context.Context, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	all, vectors := merge(c.chunks, c.vectors, chunks)
	texts := make([]string, len(all))
	for i := range all {
		texts[i] = all[i].Text
	}

	voc, stateful := c.embedder.(vocabulary)
	var prev tfidf.State
	if stateful && len(c.chunks) > 0 {
		prev = voc.Snapshot()
	}
	rollback := func() {
		if stateful && len(prev.Terms) > 0 {
			_ = voc.Restore(prev)
		}
	}

	if err := c.embedder.Prepare(texts); err != nil {
		rollback()
		return fmt.Errorf("prepare embedder: %w", err)
	}
	var pending []int
	var pendingTexts []string
	for i := range all {
		if vectors[i] == nil || stateful {
			pending = append(pending, i)
			pendingTexts = append(pendingTexts, all[i].Text)
		}
	}
	embedded, err := embedding.EmbedAll(ctx, c.embedder, pendingTexts)
	if err != nil {
		rollback()
		return fmt.Errorf("embed chunks: %w", err)
	}
	for j, i := range pending {
		vectors[i] = embedded[j]
	}

	// Memory only changes once the snapshot is on disk.
	if err := c.save(all, vectors); err != nil {
		rollback()
		return err
	}
	c.chunks = all
	c.vectors = vectors
	return nil
}

// merge returns the stored chunks with added applied by chunk ID. Vectors of
// new or replaced chunks are nil.
func merge(stored []domain.Chunk, vectors [][]float64, added []domain.Chunk) ([]domain.Chunk, [][]float64) {
	all := append([]domain.Chunk(nil), stored...)
	vecs := append([][]float64(nil), vectors...)
	pos := make(map[string]int, len(all))
	for i, ch := range all {
		pos[ch.ChunkID] = i
	}
	for _, ch := range added {
		if i, ok := pos[ch.ChunkID]; ok {
			all[i] = ch
			vecs[i] = nil
			continue
		}
		pos[ch.ChunkID] = len(all)
		all = append(all, ch)
		vecs = append(vecs, nil)
	}
	return all, vecs
}

// Query returns the topK most similar chunk texts as one nested list per query.
// Chunks sharing nothing with the query (similarity <= 0) are not returned.
func (c *Collection) Query(ctx context.Context, text string, topK int) (domain.QueryResult, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if topK <= 0 {
		topK = 3
	}
	if len(c.chunks) == 0 {
		return domain.QueryResult{Documents: domain.NestedDocuments([]*string{})}, nil
	}
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("embed query: %w", err)
	}
	scores := make([]float64, len(c.vectors))
	for i := range c.vectors {
		scores[i] = cosine(c.vectors[i], vec)
	}
	idxs := argsortDesc(scores)
	docs := make([]*string, 0, topK)
	for _, j := range idxs {
		if len(docs) == topK || scores[j] <= 0 {
			break
		}
		docs = append(docs, domain.Text(c.chunks[j].Text))
	}
	return domain.QueryResult{Documents: domain.NestedDocuments(docs)}, nil
}

type snapshot struct {
	Name       string         `json:"name"`
	Embedder   string         `json:"embedder"`
	Chunks     []domain.Chunk `json:"chunks"`
	Vectors    [][]float64    `json:"vectors"`
	Vocabulary *tfidf.State   `json:"vocabulary,omitempty"`
}

func (c *Collection) save(chunks []domain.Chunk, vectors [][]float64) error {
	if c.path == "" {
		return nil
	}
	snap := snapshot{Name: c.name, Embedder: c.embedder.Name(), Chunks: chunks, Vectors: vectors}
	if v, ok := c.embedder.(vocabulary); ok {
		st := v.Snapshot()
		snap.Vocabulary = &st
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

func load(path string, emb embedding.Embedder) (*Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", vectorstore.ErrCollectionNotFound, path)
		}
		return nil, err
	}
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", path, err)
	}
	if snap.Embedder != emb.Name() {
		return nil, fmt.Errorf("snapshot %s was built with embedder %q, configured %q", path, snap.Embedder, emb.Name())
	}
	if len(snap.Chunks) != len(snap.Vectors) {
		return nil, errors.New("chunks and vectors length mismatch")
	}
	if v, ok := emb.(vocabulary); ok && snap.Vocabulary != nil {
		if err := v.Restore(*snap.Vocabulary); err != nil {
			return nil, err
		}
	}
	return &Collection{name: snap.Name, path: path, embedder: emb, chunks: snap.Chunks, vectors: snap.Vectors}, nil
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// argsortDesc orders indexes by descending score; ties keep insertion order.
func argsortDesc(vals []float64) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool { return vals[idxs[i]] > vals[idxs[j]] })
	return idxs
}
