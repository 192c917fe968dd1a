package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"travelchat/internal/domain"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		docs domain.Documents
		want []string
	}{
		{
			name: "flat",
			docs: domain.FlatDocuments(domain.Text("x"), domain.Text("y")),
			want: []string{"x", "y"},
		},
		{
			name: "nested single query",
			docs: domain.NestedDocuments([]*string{domain.Text("x"), domain.Text("y")}),
			want: []string{"x", "y"},
		},
		{
			name: "nested keeps inner order across lists",
			docs: domain.NestedDocuments([]*string{domain.Text("a")}, []*string{domain.Text("b"), domain.Text("c")}),
			want: []string{"a", "b", "c"},
		},
		{
			name: "drops nil and empty",
			docs: domain.FlatDocuments(nil, domain.Text("z"), domain.Text("")),
			want: []string{"z"},
		},
		{
			name: "nested drops nil and empty",
			docs: domain.NestedDocuments([]*string{nil, domain.Text("z"), domain.Text("")}),
			want: []string{"z"},
		},
		{
			name: "empty flat",
			docs: domain.FlatDocuments(),
			want: nil,
		},
		{
			name: "empty nested",
			docs: domain.NestedDocuments([]*string{}),
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.docs))
		})
	}
}

func TestRetrieveNoCollections(t *testing.T) {
	r := NewRegistry(context.Background(), newFakeStore(), []string{"municipalities", "landmarks"}, testLogger())
	got := NewRetriever(3, false, testLogger()).Retrieve(context.Background(), "What should I pack?", r)
	assert.Equal(t, "", got)
}

func TestRetrievePreservesRegistryOrder(t *testing.T) {
	for _, parallel := range []bool{false, true} {
		t.Run(map[bool]string{false: "sequential", true: "parallel"}[parallel], func(t *testing.T) {
			a := &fakeCollection{name: "A", result: flat("x", "y")}
			b := &fakeCollection{name: "B", result: flat("z")}
			r := NewRegistry(context.Background(), newFakeStore(b, a), []string{"A", "B"}, testLogger())

			got := NewRetriever(3, parallel, testLogger()).Retrieve(context.Background(), "q", r)
			assert.Equal(t, "x\ny\nz", got)
		})
	}
}

func TestRetrieveDropsEmptySnippets(t *testing.T) {
	c := &fakeCollection{name: "news_articles", result: domain.QueryResult{
		Documents: domain.NestedDocuments([]*string{nil, domain.Text("z"), domain.Text("")}),
	}}
	r := NewRegistry(context.Background(), newFakeStore(c), []string{"news_articles"}, testLogger())

	got := NewRetriever(3, false, testLogger()).Retrieve(context.Background(), "q", r)
	assert.Equal(t, "z", got)
}

func TestRetrieveContainsQueryFailure(t *testing.T) {
	broken := &fakeCollection{name: "municipalities", err: errBackend}
	ok := &fakeCollection{name: "landmarks", result: flat("El Morro is a fortress in San Juan.")}
	r := NewRegistry(context.Background(), newFakeStore(broken, ok), []string{"municipalities", "landmarks"}, testLogger())

	retriever := NewRetriever(3, false, testLogger())
	results := retriever.Results(context.Background(), "forts", r)
	assert.Equal(t, []domain.RetrievalResult{
		{Collection: "municipalities"},
		{Collection: "landmarks", Snippets: []string{"El Morro is a fortress in San Juan."}},
	}, results)
	assert.Equal(t, "El Morro is a fortress in San Juan.", JoinContext(results))
}

func TestRetrieveSkipsUnavailable(t *testing.T) {
	landmarks := &fakeCollection{name: "landmarks", result: flat("x")}
	r := NewRegistry(context.Background(), newFakeStore(landmarks), []string{"municipalities", "landmarks"}, testLogger())

	NewRetriever(3, false, testLogger()).Retrieve(context.Background(), "q", r)
	assert.Equal(t, 1, landmarks.queried())
	for _, h := range r.Handles() {
		if h.Name == "municipalities" {
			assert.Nil(t, h.Collection)
		}
	}
}

func TestNewRetrieverDefaultTopK(t *testing.T) {
	assert.Equal(t, DefaultTopK, NewRetriever(0, false, testLogger()).topK)
	assert.Equal(t, 5, NewRetriever(5, false, testLogger()).topK)
}
