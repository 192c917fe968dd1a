package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"travelchat/internal/domain"
	"travelchat/internal/vectorstore"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCollection returns a canned result or error for every query.
type fakeCollection struct {
	name    string
	result  domain.QueryResult
	err     error
	mu      sync.Mutex
	queries []string
}

func (c *fakeCollection) Name() string { return c.name }

func (c *fakeCollection) Add(context.Context, []domain.Chunk) error { return nil }

func (c *fakeCollection) Query(_ context.Context, text string, _ int) (domain.QueryResult, error) {
	c.mu.Lock()
	c.queries = append(c.queries, text)
	c.mu.Unlock()
	return c.result, c.err
}

func (c *fakeCollection) queried() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queries)
}

// fakeStore opens collections from a map; missing names fail.
type fakeStore struct {
	collections map[string]*fakeCollection
	opens       []string
}

func newFakeStore(cols ...*fakeCollection) *fakeStore {
	s := &fakeStore{collections: map[string]*fakeCollection{}}
	for _, c := range cols {
		s.collections[c.name] = c
	}
	return s
}

func (s *fakeStore) Open(_ context.Context, name string) (vectorstore.Collection, error) {
	s.opens = append(s.opens, name)
	c, ok := s.collections[name]
	if !ok {
		return nil, vectorstore.ErrCollectionNotFound
	}
	return c, nil
}

func (s *fakeStore) GetOrCreate(ctx context.Context, name string) (vectorstore.Collection, error) {
	return s.Open(ctx, name)
}

func flat(docs ...string) domain.QueryResult {
	ptrs := make([]*string, len(docs))
	for i := range docs {
		ptrs[i] = domain.Text(docs[i])
	}
	return domain.QueryResult{Documents: domain.FlatDocuments(ptrs...)}
}

// fakeModel records the messages it receives.
type fakeModel struct {
	reply    string
	err      error
	messages [][]domain.Message
	params   []domain.GenerationParams
}

func (m *fakeModel) Complete(_ context.Context, msgs []domain.Message, params domain.GenerationParams) domain.Completion {
	m.messages = append(m.messages, msgs)
	m.params = append(m.params, params)
	if m.err != nil {
		return domain.Failed(m.err)
	}
	return domain.Succeeded(m.reply)
}

func (m *fakeModel) last() []domain.Message {
	if len(m.messages) == 0 {
		return nil
	}
	return m.messages[len(m.messages)-1]
}

// fakeChatLog keeps entries in memory; err makes every Append fail.
type fakeChatLog struct {
	entries []domain.ChatLogEntry
	err     error
}

func (l *fakeChatLog) Append(_ context.Context, e domain.ChatLogEntry) error {
	if l.err != nil {
		return l.err
	}
	l.entries = append(l.entries, e)
	return nil
}

func (l *fakeChatLog) ReadAll(context.Context) (string, error) {
	if l.err != nil {
		return "", l.err
	}
	return "", nil
}

func (l *fakeChatLog) Close() error { return nil }

var errBackend = errors.New("backend unavailable")
