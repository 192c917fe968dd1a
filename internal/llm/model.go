// Package llm adapts langchaingo chat models to the chat service.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"travelchat/internal/domain"
)

// Supported providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
)

// ErrNoChoices is returned when the provider answers without any choice.
var ErrNoChoices = errors.New("no response choices")

// Config selects and configures the chat provider.
type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// Model wraps a langchaingo model for chat completion.
type Model struct {
	llm       llms.Model
	modelName string
}

// NewModel creates a chat model based on configuration.
func NewModel(cfg Config) (*Model, error) {
	var model llms.Model
	var err error

	switch cfg.Provider {
	case ProviderOpenAI, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key required")
		}
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		if cfg.Timeout > 0 {
			opts = append(opts, openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
		}
		model, err = openai.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		model, err = ollama.New(opts...)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	return New(model, cfg.Model), nil
}

// New wraps an existing langchaingo model.
func New(model llms.Model, modelName string) *Model {
	return &Model{llm: model, modelName: modelName}
}

// Model returns the configured model name.
func (m *Model) Model() string {
	return m.modelName
}

// Complete submits the messages and returns the first choice.
func (m *Model) Complete(ctx context.Context, messages []domain.Message, params domain.GenerationParams) domain.Completion {
	content := make([]llms.MessageContent, 0, len(messages))
	for _, msg := range messages {
		content = append(content, llms.TextParts(messageType(msg.Role), msg.Content))
	}

	response, err := m.llm.GenerateContent(ctx, content, callOptions(params)...)
	if err != nil {
		return domain.Failed(fmt.Errorf("generate: %w", err))
	}
	if response == nil || len(response.Choices) == 0 {
		return domain.Failed(ErrNoChoices)
	}
	return domain.Succeeded(response.Choices[0].Content)
}

func callOptions(p domain.GenerationParams) []llms.CallOption {
	var opts []llms.CallOption
	if p.Model != "" {
		opts = append(opts, llms.WithModel(p.Model))
	}
	if p.Temperature != nil {
		opts = append(opts, llms.WithTemperature(*p.Temperature))
	}
	if p.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(p.MaxTokens))
	}
	return opts
}

func messageType(r domain.Role) llms.ChatMessageType {
	switch r {
	case domain.RoleSystem:
		return llms.ChatMessageTypeSystem
	case domain.RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
