package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"travelchat/internal/domain"
)

// DefaultTopK is the number of snippets requested from each collection.
const DefaultTopK = 3

// Retriever queries every available collection and flattens the results.
type Retriever struct {
	topK     int
	parallel bool
	logger   *slog.Logger
}

// NewRetriever creates a retriever. parallel queries collections concurrently;
// the composed context is the same either way.
func NewRetriever(topK int, parallel bool, logger *slog.Logger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{topK: topK, parallel: parallel, logger: logger}
}

// Retrieve returns the composed context for query. An empty string is a
// normal outcome: no collections, or nothing matched.
func (r *Retriever) Retrieve(ctx context.Context, query string, registry *Registry) string {
	return JoinContext(r.Results(ctx, query, registry))
}

// Results returns one normalized result per available collection, in
// registry order. Failed queries yield an empty result.
func (r *Retriever) Results(ctx context.Context, query string, registry *Registry) []domain.RetrievalResult {
	handles := registry.loaded()
	results := make([]domain.RetrievalResult, len(handles))
	if !r.parallel {
		for i, h := range handles {
			results[i] = r.query(ctx, query, h)
		}
		return results
	}
	var wg sync.WaitGroup
	for i, h := range handles {
		wg.Add(1)
		go func(i int, h Handle) {
			defer wg.Done()
			results[i] = r.query(ctx, query, h)
		}(i, h)
	}
	wg.Wait()
	return results
}

func (r *Retriever) query(ctx context.Context, query string, h Handle) domain.RetrievalResult {
	res, err := h.Collection.Query(ctx, query, r.topK)
	if err != nil {
		r.logger.Warn("collection query failed", "collection", h.Name, "error", err)
		return domain.RetrievalResult{Collection: h.Name}
	}
	snippets := Normalize(res.Documents)
	r.logger.Debug("collection queried", "collection", h.Name, "snippets", len(snippets))
	return domain.RetrievalResult{Collection: h.Name, Snippets: snippets}
}

// Normalize flattens either document shape into one ordered list, dropping
// nil and empty entries.
func Normalize(docs domain.Documents) []string {
	var out []string
	keep := func(list []*string) {
		for _, d := range list {
			if d != nil && *d != "" {
				out = append(out, *d)
			}
		}
	}
	switch docs.Shape {
	case domain.ShapeNested:
		for _, inner := range docs.Nested {
			keep(inner)
		}
	default:
		keep(docs.Flat)
	}
	return out
}

// JoinContext joins all snippets, in order, with single newlines.
func JoinContext(results []domain.RetrievalResult) string {
	var parts []string
	for _, res := range results {
		parts = append(parts, res.Snippets...)
	}
	return strings.Join(parts, "\n")
}
