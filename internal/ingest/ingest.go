// Package ingest loads travel records and news text into vector store collections.
package ingest

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"travelchat/internal/domain"
	"travelchat/internal/summarizer"
	"travelchat/internal/vectorstore"
)

// ErrNoDocuments is returned when none of the given paths yield a document.
var ErrNoDocuments = errors.New("no .json or .txt documents found")

// Coordinates of a municipality or landmark. Either value may be unknown.
type Coordinates struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Record is one entry of a municipalities.json or landmarks.json export.
type Record struct {
	Name         string       `json:"name"`
	Category     string       `json:"category"`
	Description  []string     `json:"description"`
	Coordinates  *Coordinates `json:"coordinates"`
	Municipality *string      `json:"municipality,omitempty"`
	SourceFile   string       `json:"source_file"`
}

// Text renders the record as indexable prose.
func (r Record) Text() string {
	var parts []string
	for _, p := range r.Description {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	name := strings.TrimSpace(r.Name)
	if len(parts) == 0 {
		return name
	}
	if name == "" {
		return strings.Join(parts, " ")
	}
	return name + ". " + strings.Join(parts, " ")
}

type termCounter interface {
	TopTerms(text string, n int) []summarizer.Term
}

// Report describes one ingestion run.
type Report struct {
	Collection string
	Documents  int
	Chunks     int
	Summary    string
	TopTerms   []summarizer.Term
}

// Ingester chunks documents and adds them to a named collection.
type Ingester struct {
	store        vectorstore.Store
	chunker      domain.Chunker
	summarizer   domain.Summarizer
	maxSentences int
	logger       *slog.Logger
}

// New creates an Ingester. summarizer may be nil to skip the corpus summary.
func New(store vectorstore.Store, chunker domain.Chunker, summarizer domain.Summarizer, maxSentences int, logger *slog.Logger) *Ingester {
	return &Ingester{store: store, chunker: chunker, summarizer: summarizer, maxSentences: maxSentences, logger: logger}
}

// Ingest loads paths (glob patterns allowed), chunks every document and adds
// the chunks to the collection, creating it if needed.
func (in *Ingester) Ingest(ctx context.Context, collection string, paths []string) (Report, error) {
	report := Report{Collection: collection}

	documents, err := in.LoadDocuments(paths)
	if err != nil {
		return report, err
	}
	report.Documents = len(documents)

	var chunks []domain.Chunk
	var corpus strings.Builder
	for _, d := range documents {
		cs, err := in.chunker.Chunk(d)
		if err != nil {
			return report, fmt.Errorf("chunk %s: %w", d.Path, err)
		}
		chunks = append(chunks, cs...)
		corpus.WriteString(d.Content)
		corpus.WriteString("\n")
	}
	if len(chunks) == 0 {
		return report, ErrNoDocuments
	}

	c, err := in.store.GetOrCreate(ctx, collection)
	if err != nil {
		return report, fmt.Errorf("open collection %s: %w", collection, err)
	}
	if err := c.Add(ctx, chunks); err != nil {
		return report, fmt.Errorf("add to %s: %w", collection, err)
	}
	report.Chunks = len(chunks)
	in.logger.Info("collection ingested", "collection", collection, "documents", report.Documents, "chunks", report.Chunks)

	if in.summarizer != nil {
		summary, err := in.summarizer.Summarize(corpus.String(), in.maxSentences)
		if err != nil {
			return report, fmt.Errorf("summarize: %w", err)
		}
		report.Summary = summary
		if tc, ok := in.summarizer.(termCounter); ok {
			report.TopTerms = tc.TopTerms(corpus.String(), 10)
		}
	}
	return report, nil
}

// LoadDocuments expands paths and reads .json record exports and .txt files.
// Other files are skipped.
func (in *Ingester) LoadDocuments(paths []string) ([]domain.Document, error) {
	var documents []domain.Document
	for _, p := range paths {
		matches, _ := filepath.Glob(p)
		if matches == nil {
			matches = []string{p}
		}
		for _, m := range matches {
			switch strings.ToLower(filepath.Ext(m)) {
			case ".json":
				docs, err := loadRecords(m)
				if err != nil {
					return nil, err
				}
				documents = append(documents, docs...)
			case ".txt":
				data, err := os.ReadFile(m)
				if err != nil {
					return nil, err
				}
				documents = append(documents, domain.Document{
					ID:      hashString(m),
					Path:    m,
					Title:   strings.TrimSuffix(filepath.Base(m), filepath.Ext(m)),
					Content: string(data),
				})
			default:
				in.logger.Warn("skipping unsupported file", "path", m)
			}
		}
	}
	if len(documents) == 0 {
		return nil, ErrNoDocuments
	}
	return documents, nil
}

func loadRecords(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	documents := make([]domain.Document, 0, len(records))
	for i, r := range records {
		text := r.Text()
		if text == "" {
			continue
		}
		documents = append(documents, domain.Document{
			ID:       hashString(path + "#" + strconv.Itoa(i) + "#" + r.Name),
			Path:     path,
			Title:    r.Name,
			Category: r.Category,
			Content:  text,
		})
	}
	return documents, nil
}

func hashString(s string) string {
	h := sha1.Sum([]byte(s))
	return hex.EncodeToString(h[:])
}
