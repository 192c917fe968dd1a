// Package chatlog stores one record per completed chat turn for offline analysis.
package chatlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"travelchat/internal/domain"
)

// DefaultPath is where the JSON Lines sink writes unless configured otherwise.
const DefaultPath = "chat_logs.jsonl"

// JSONL appends entries to a JSON Lines file.
type JSONL struct {
	mu   sync.Mutex
	path string
}

// NewJSONL returns a sink writing to path. The file is created on first append.
func NewJSONL(path string) *JSONL {
	if path == "" {
		path = DefaultPath
	}
	return &JSONL{path: path}
}

// Append writes entry as one line.
func (l *JSONL) Append(_ context.Context, entry domain.ChatLogEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode chat log entry: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open chat log: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("write chat log: %w", err)
	}
	return f.Close()
}

// ReadAll returns the file content. A missing file reads as empty.
func (l *JSONL) ReadAll(_ context.Context) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read chat log: %w", err)
	}
	return string(data), nil
}

// Close is a no-op; the file is opened per append.
func (l *JSONL) Close() error { return nil }
