package domain

import "context"

// Document represents a single source record loaded for indexing.
type Document struct {
	ID       string
	Path     string
	Title    string
	Category string
	Content  string
}

// Chunk is a semantically meaningful part of a document used for indexing.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Text       string
	Index      int
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}

// ChatModel submits a role-tagged message sequence and returns one reply.
// Failures are reported through Completion.Err, never by panicking.
type ChatModel interface {
	Complete(ctx context.Context, messages []Message, params GenerationParams) Completion
}

// ChatLog is an append-only sink of chat log entries.
type ChatLog interface {
	Append(ctx context.Context, entry ChatLogEntry) error
	// ReadAll returns the whole sink rendered as text, one entry per line.
	ReadAll(ctx context.Context) (string, error)
	Close() error
}
