package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelchat/internal/vectorstore"
)

func TestRegistryKeepsRegistrationOrder(t *testing.T) {
	store := newFakeStore(
		&fakeCollection{name: "news_articles"},
		&fakeCollection{name: "municipalities"},
		&fakeCollection{name: "landmarks"},
	)
	r := NewRegistry(context.Background(), store, []string{"municipalities", "landmarks", "news_articles"}, testLogger())

	assert.Equal(t, []string{"municipalities", "landmarks", "news_articles"}, r.Available())
	assert.Equal(t, []string{"municipalities", "landmarks", "news_articles"}, store.opens)
}

func TestRegistryMarksFailedLoadsUnavailable(t *testing.T) {
	store := newFakeStore(&fakeCollection{name: "landmarks"})
	r := NewRegistry(context.Background(), store, []string{"municipalities", "landmarks", "news_articles"}, testLogger())

	assert.Equal(t, []string{"landmarks"}, r.Available())

	handles := r.Handles()
	require.Len(t, handles, 3)
	assert.False(t, handles[0].Available())
	assert.ErrorIs(t, handles[0].Err, vectorstore.ErrCollectionNotFound)
	assert.True(t, handles[1].Available())
	assert.NoError(t, handles[1].Err)
	assert.False(t, handles[2].Available())
}

func TestRegistryEmpty(t *testing.T) {
	r := NewRegistry(context.Background(), newFakeStore(), nil, testLogger())
	assert.Empty(t, r.Available())
	assert.Empty(t, r.Handles())
}

func TestRegistryNeverRetries(t *testing.T) {
	store := newFakeStore()
	r := NewRegistry(context.Background(), store, []string{"landmarks"}, testLogger())
	retriever := NewRetriever(3, false, testLogger())

	for i := 0; i < 3; i++ {
		assert.Equal(t, "", retriever.Retrieve(context.Background(), "forts", r))
	}
	assert.Equal(t, []string{"landmarks"}, store.opens, "a failed load is permanent for the session")
}
