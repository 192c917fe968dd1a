package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelchat/internal/domain"
	"travelchat/internal/embedding"
	"travelchat/internal/vectorstore"
)

// fixedEmbedder returns the same vector for every text.
type fixedEmbedder struct{}

func (fixedEmbedder) Name() string                                      { return "fixed" }
func (fixedEmbedder) Prepare([]string) error                            { return nil }
func (fixedEmbedder) Dimension() int                                    { return 3 }
func (fixedEmbedder) Embed(context.Context, string) ([]float64, error) { return []float64{1, 0, 0}, nil }

func newFixed() embedding.Embedder { return fixedEmbedder{} }

type fakeQdrant struct {
	mu          sync.Mutex
	collections map[string]int
	points      map[string][]map[string]any
	apiKeys     []string
}

func newFakeQdrant() *fakeQdrant {
	return &fakeQdrant{collections: map[string]int{}, points: map[string][]map[string]any{}}
}

func (f *fakeQdrant) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiKeys = append(f.apiKeys, r.Header.Get("api-key"))

	collection := r.PathValue("name")
	switch {
	case r.Method == http.MethodGet && r.Pattern == "GET /collections/{name}":
		if _, ok := f.collections[collection]; !ok {
			http.Error(w, `{"status":{"error":"Not found"}}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"result":{"status":"green"}}`))
	case r.Pattern == "PUT /collections/{name}":
		var body struct {
			Vectors struct {
				Size int `json:"size"`
			} `json:"vectors"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.collections[collection] = body.Vectors.Size
		_, _ = w.Write([]byte(`{"result":true}`))
	case r.Pattern == "PUT /collections/{name}/points":
		var body struct {
			Points []map[string]any `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.points[collection] = append(f.points[collection], body.Points...)
		_, _ = w.Write([]byte(`{"result":{"status":"completed"}}`))
	case r.Pattern == "POST /collections/{name}/points/search":
		var results []map[string]any
		for _, p := range f.points[collection] {
			results = append(results, map[string]any{"score": 1.0, "payload": p["payload"]})
		}
		results = append(results, map[string]any{"score": 0.1, "payload": map[string]any{}})
		_ = json.NewEncoder(w).Encode(map[string]any{"result": results})
	default:
		http.NotFound(w, r)
	}
}

func newServer(t *testing.T, fake *fakeQdrant) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle("GET /collections/{name}", fake)
	mux.Handle("PUT /collections/{name}", fake)
	mux.Handle("PUT /collections/{name}/points", fake)
	mux.Handle("POST /collections/{name}/points/search", fake)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenMissing(t *testing.T) {
	srv := newServer(t, newFakeQdrant())
	s := NewStore(Config{URL: srv.URL}, newFixed)

	_, err := s.Open(context.Background(), "landmarks")
	assert.ErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestAddCreatesCollectionAndQuery(t *testing.T) {
	ctx := context.Background()
	fake := newFakeQdrant()
	srv := newServer(t, fake)
	s := NewStore(Config{URL: srv.URL + "/", APIKey: "secret"}, newFixed)

	c, err := s.GetOrCreate(ctx, "landmarks")
	require.NoError(t, err)
	require.NoError(t, c.Add(ctx, []domain.Chunk{
		{DocumentID: "morro", ChunkID: "morro:0", Text: "El Morro is a fortress in San Juan."},
	}))
	fake.mu.Lock()
	assert.Equal(t, 3, fake.collections["landmarks"])
	require.Len(t, fake.points["landmarks"], 1)
	assert.Equal(t, PointID("morro:0"), fake.points["landmarks"][0]["id"])
	fake.mu.Unlock()

	opened, err := s.Open(ctx, "landmarks")
	require.NoError(t, err)
	res, err := opened.Query(ctx, "forts", 3)
	require.NoError(t, err)
	assert.Equal(t, domain.ShapeFlat, res.Documents.Shape)
	require.Len(t, res.Documents.Flat, 2)
	require.NotNil(t, res.Documents.Flat[0])
	assert.Equal(t, "El Morro is a fortress in San Juan.", *res.Documents.Flat[0])
	assert.Nil(t, res.Documents.Flat[1], "point without text payload")

	fake.mu.Lock()
	defer fake.mu.Unlock()
	for _, k := range fake.apiKeys {
		assert.Equal(t, "secret", k)
	}
}

func TestQueryServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := &Collection{store: NewStore(Config{URL: srv.URL}, newFixed), name: "news_articles", embedder: fixedEmbedder{}, exists: true}
	_, err := c.Query(context.Background(), "hurricane", 3)
	require.Error(t, err)
	assert.NotErrorIs(t, err, vectorstore.ErrCollectionNotFound)
}

func TestPointIDIsStableUUID(t *testing.T) {
	a := PointID("landmarks:morro:0")
	b := PointID("landmarks:morro:0")
	assert.Equal(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
	assert.NotEqual(t, a, PointID("landmarks:morro:1"))
}
