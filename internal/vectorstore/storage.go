package vectorstore

import (
	"context"
	"errors"

	"travelchat/internal/domain"
)

// ErrCollectionNotFound is returned by Open for a collection that does not exist.
var ErrCollectionNotFound = errors.New("collection not found")

// Store hands out named document collections.
type Store interface {
	// Open returns an existing collection and fails if it is missing.
	Open(ctx context.Context, name string) (Collection, error)
	// GetOrCreate returns the named collection, creating it if needed.
	GetOrCreate(ctx context.Context, name string) (Collection, error)
}

// Collection is an independently queryable set of embedded documents.
// Embedding happens inside the collection: callers add and query by text.
type Collection interface {
	Name() string
	Add(ctx context.Context, chunks []domain.Chunk) error
	Query(ctx context.Context, text string, topK int) (domain.QueryResult, error)
}
