package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"travelchat/internal/chatlog"
	"travelchat/internal/chunker"
	"travelchat/internal/config"
	"travelchat/internal/domain"
	"travelchat/internal/embedding"
	"travelchat/internal/embedding/openai"
	"travelchat/internal/embedding/tfidf"
	"travelchat/internal/ingest"
	"travelchat/internal/llm"
	"travelchat/internal/service"
	"travelchat/internal/summarizer"
	"travelchat/internal/vectorstore"
	"travelchat/internal/vectorstore/memory"
	"travelchat/internal/vectorstore/qdrant"
)

// newEmbedderFactory returns a constructor for per-collection embedders.
// Corpus-dependent embedders need one instance per collection.
func newEmbedderFactory(cfg *config.AppConfig) (func() embedding.Embedder, error) {
	switch cfg.Embedder.Type {
	case "tfidf", "":
		return func() embedding.Embedder { return tfidf.NewEmbedder() }, nil
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
			BatchSize: cfg.Embedder.OpenAI.BatchSize,
		})
		if err != nil {
			return nil, fmt.Errorf("openai embedder init: %w", err)
		}
		return func() embedding.Embedder { return client }, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Embedder.Type)
	}
}

func newStore(cfg *config.AppConfig) (vectorstore.Store, error) {
	newEmbedder, err := newEmbedderFactory(cfg)
	if err != nil {
		return nil, err
	}
	switch cfg.VectorStore.Type {
	case "memory", "":
		return memory.NewStore(cfg.VectorStore.StorePath, newEmbedder), nil
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.NewStore(qdrant.Config{
			URL:     cfg.VectorStore.Qdrant.URL,
			APIKey:  cfg.VectorStore.Qdrant.APIKey,
			Timeout: time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		}, newEmbedder), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.VectorStore.Type)
	}
}

func newChatModel(cfg *config.AppConfig) (domain.ChatModel, error) {
	model, err := llm.NewModel(llm.Config{
		Provider: cfg.Chat.Provider,
		APIKey:   cfg.Chat.APIKey(),
		BaseURL:  cfg.Chat.BaseURL,
		Model:    cfg.Chat.Model,
		Timeout:  time.Duration(cfg.Chat.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("init chat model: %w", err)
	}
	return model, nil
}

// newChatService assembles one session. The caller closes the returned chat log.
func newChatService(ctx context.Context, cfg *config.AppConfig) (*service.ChatService, domain.ChatLog, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	store, err := newStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	model, err := newChatModel(cfg)
	if err != nil {
		return nil, nil, err
	}
	sink, err := chatlog.Open(cfg.ChatLog.Type, cfg.ChatLog.Path)
	if err != nil {
		return nil, nil, err
	}

	svc := service.NewChatService(
		service.NewRegistry(ctx, store, cfg.Retrieval.Collections, logger),
		service.NewRetriever(cfg.Retrieval.TopK, cfg.Retrieval.Parallel, logger),
		service.NewComposer(cfg.Chat.IncludeHistory, cfg.Chat.MaxHistoryTurns),
		model,
		sink,
		service.Options{
			Params: domain.GenerationParams{
				Model:       cfg.Chat.Model,
				Temperature: cfg.Chat.Temperature,
				MaxTokens:   cfg.Chat.MaxTokens,
			},
			SessionID: uuid.NewString(),
			Greeting:  cfg.Chat.Greeting,
		},
		logger,
	)
	return svc, sink, nil
}

func newIngester(cfg *config.AppConfig) (*ingest.Ingester, error) {
	if err := cfg.ValidateIndex(); err != nil {
		return nil, err
	}
	store, err := newStore(cfg)
	if err != nil {
		return nil, err
	}

	var ch domain.Chunker
	switch cfg.Chunker.Type {
	case "sentence", "":
		ch = chunker.NewSentenceChunker(cfg.Chunker.SentencesPerChunk, cfg.Chunker.OverlapSentences)
	default:
		return nil, fmt.Errorf("unknown chunker: %s", cfg.Chunker.Type)
	}

	var sum domain.Summarizer
	switch cfg.Summarizer.Type {
	case "frequency", "":
		sum = summarizer.NewFrequencySummarizer()
	case "none":
	default:
		return nil, fmt.Errorf("unknown summarizer: %s", cfg.Summarizer.Type)
	}
	return ingest.New(store, ch, sum, cfg.Summarizer.MaxSentences, logger), nil
}
