package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissingAPIKey is returned by Validate when the chat provider credential is unset.
var ErrMissingAPIKey = errors.New("missing API key: set OPENAI_API_KEY in the environment or .env")

// ChatConfig configures the chat completion provider and conversation handling.
type ChatConfig struct {
	Provider        string   `yaml:"provider"`
	Model           string   `yaml:"model"`
	Temperature     *float64 `yaml:"temperature,omitempty"`
	MaxTokens       int      `yaml:"max_tokens,omitempty"`
	IncludeHistory  bool     `yaml:"include_history"`
	MaxHistoryTurns int      `yaml:"max_history_turns"`
	Greeting        string   `yaml:"greeting"`
	APIKeyEnv       string   `yaml:"api_key_env"`
	BaseURL         string   `yaml:"base_url,omitempty"`
	TimeoutSecs     int      `yaml:"timeout_secs"`
}

// APIKey resolves the credential from the configured environment variable.
func (c ChatConfig) APIKey() string {
	return strings.TrimSpace(os.Getenv(c.APIKeyEnv))
}

// RetrievalConfig configures the context retriever.
type RetrievalConfig struct {
	TopK        int      `yaml:"top_k"`
	Parallel    bool     `yaml:"parallel"`
	Collections []string `yaml:"collections"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	BatchSize   int    `yaml:"batch_size"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures how documents are split into chunks.
type ChunkerConfig struct {
	Type              string `yaml:"type"`
	SentencesPerChunk int    `yaml:"sentences_per_chunk"`
	OverlapSentences  int    `yaml:"overlap_sentences"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type      string        `yaml:"type"`
	StorePath string        `yaml:"store_path,omitempty"`
	Qdrant    *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant server.
type QdrantConfig struct {
	URL         string `yaml:"url"`
	APIKey      string `yaml:"api_key,omitempty"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// ChatLogConfig selects the chat log sink.
type ChatLogConfig struct {
	Type string `yaml:"type"`
	Path string `yaml:"path"`
}

// LoggingConfig configures the application logger.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// SummarizerConfig selects and configures the summarizer.
type SummarizerConfig struct {
	Type         string `yaml:"type"`
	MaxSentences int    `yaml:"max_sentences"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Chat        ChatConfig        `yaml:"chat"`
	Retrieval   RetrievalConfig   `yaml:"retrieval"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	Chunker     ChunkerConfig     `yaml:"chunker"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	ChatLog     ChatLogConfig     `yaml:"chat_log"`
	Logging     LoggingConfig     `yaml:"logging"`
	Summarizer  SummarizerConfig  `yaml:"summarizer"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := defaultConfig()
			applyEnv(cfg)
			return cfg, nil
		}
		return nil, err
	}
	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	applyConfigDefaults(cfg)
	applyEnv(cfg)
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/travelchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/travelchat/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	applyEnv(cfg)
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks everything a chat session needs: the chat credential, the
// retrieval settings and the index settings.
func (c *AppConfig) Validate() error {
	if (c.Chat.Provider == "openai" || c.Chat.Provider == "") && c.Chat.APIKey() == "" {
		return ErrMissingAPIKey
	}
	if c.Retrieval.TopK < 1 {
		return fmt.Errorf("retrieval.top_k must be positive, got %d", c.Retrieval.TopK)
	}
	return c.ValidateIndex()
}

// ValidateIndex checks the embedder and vector store combination used by
// both ingestion and retrieval.
func (c *AppConfig) ValidateIndex() error {
	if c.Embedder.Type == "openai" && c.Embedder.OpenAI != nil &&
		strings.TrimSpace(os.Getenv(c.Embedder.OpenAI.APIKeyEnv)) == "" {
		return ErrMissingAPIKey
	}
	if c.Embedder.Type == "tfidf" && c.VectorStore.Type == "qdrant" {
		return errors.New("tfidf embedder requires the memory vector store: its vocabulary is kept in the store snapshot")
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "travelchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Chat: ChatConfig{
			Provider:        "openai",
			Model:           "gpt-4o-mini",
			IncludeHistory:  true,
			MaxHistoryTurns: 10,
			Greeting:        "Welcome to your Puerto Rico Travel Planner! How can I help you plan your trip today?",
			APIKeyEnv:       "OPENAI_API_KEY",
			TimeoutSecs:     60,
		},
		Retrieval: RetrievalConfig{
			TopK:        3,
			Collections: []string{"municipalities", "landmarks", "news_articles"},
		},
		Embedder:    EmbedderConfig{Type: "tfidf"},
		Chunker:     ChunkerConfig{Type: "sentence", SentencesPerChunk: 5, OverlapSentences: 1},
		VectorStore: VectorStoreConfig{Type: "memory", StorePath: filepath.Join(".travelchat", "store")},
		ChatLog:     ChatLogConfig{Type: "jsonl", Path: "chat_logs.jsonl"},
		Logging:     LoggingConfig{Level: "info", File: filepath.Join(os.TempDir(), "travelchat.log")},
		Summarizer:  SummarizerConfig{Type: "frequency", MaxSentences: 5},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.SentencesPerChunk == 0 {
		cfg.Chunker.SentencesPerChunk = 5
	}
	if cfg.Chat.APIKeyEnv == "" {
		cfg.Chat.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Chat.MaxHistoryTurns < 0 {
		cfg.Chat.MaxHistoryTurns = 0
	}
	if cfg.Embedder.Type == "openai" {
		if cfg.Embedder.OpenAI == nil {
			cfg.Embedder.OpenAI = &OpenAIEmbedderConfig{}
		}
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
	if cfg.VectorStore.Type == "qdrant" {
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		if cfg.VectorStore.Qdrant.URL == "" {
			cfg.VectorStore.Qdrant.URL = "http://localhost:6333"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 10
		}
	}
}

func applyEnv(cfg *AppConfig) {
	if v := os.Getenv("TRAVELCHAT_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("TRAVELCHAT_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
	if v := os.Getenv("QDRANT_API_KEY"); v != "" && cfg.VectorStore.Qdrant != nil {
		cfg.VectorStore.Qdrant.APIKey = v
	}
}
