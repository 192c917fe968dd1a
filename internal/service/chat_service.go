package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"travelchat/internal/domain"
)

// Options configures a chat session.
type Options struct {
	Params    domain.GenerationParams
	SessionID string
	Greeting  string
	// Now is used for chat log timestamps; defaults to time.Now.
	Now func() time.Time
}

// ChatService runs one conversation: retrieve, compose, complete, record.
type ChatService struct {
	registry   *Registry
	retriever  *Retriever
	composer   *Composer
	model      domain.ChatModel
	chatLog    domain.ChatLog
	transcript *Transcript
	opts       Options
	logger     *slog.Logger

	// turns run one at a time
	mu sync.Mutex
}

func NewChatService(registry *Registry, retriever *Retriever, composer *Composer, model domain.ChatModel, chatLog domain.ChatLog, opts Options, logger *slog.Logger) *ChatService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SessionID != "" {
		logger = logger.With("session_id", opts.SessionID)
	}
	return &ChatService{
		registry:   registry,
		retriever:  retriever,
		composer:   composer,
		model:      model,
		chatLog:    chatLog,
		transcript: NewTranscript(opts.Greeting),
		opts:       opts,
		logger:     logger,
	}
}

// Send processes one user turn and returns the text to display. It never
// fails: a model error becomes an "Error: ..." reply.
func (s *ChatService) Send(ctx context.Context, input string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("user input received", "input_len", len(input))
	history := s.transcript.Turns()
	s.transcript.Append(domain.Turn{Role: domain.RoleUser, Content: input})

	composed := s.retriever.Retrieve(ctx, input, s.registry)
	branch := Branch(composed)
	s.logger.Info("context composed", "branch", branch.String(), "context_len", len(composed))

	messages := s.composer.Compose(input, composed, history)

	start := time.Now()
	completion := s.model.Complete(ctx, messages, s.opts.Params)
	var reply string
	if completion.OK() {
		reply = completion.Reply
		s.logger.Info("model replied", "model", s.opts.Params.Model, "reply_len", len(reply), "duration_ms", time.Since(start).Milliseconds())
	} else {
		reply = "Error: " + completion.Err.Error()
		s.logger.Error("chat completion failed", "model", s.opts.Params.Model, "error", completion.Err)
	}

	s.transcript.Append(domain.Turn{Role: domain.RoleAssistant, Content: reply})
	s.record(ctx, input, reply)
	return reply
}

func (s *ChatService) record(ctx context.Context, input, reply string) {
	if s.chatLog == nil {
		return
	}
	entry := domain.ChatLogEntry{
		Timestamp:  s.opts.Now(),
		SessionID:  s.opts.SessionID,
		UserInput:  input,
		ModelReply: reply,
	}
	if err := s.chatLog.Append(ctx, entry); err != nil {
		s.logger.Error("chat log write failed", "error", err)
	}
}

// Transcript returns the turns of this session, in order.
func (s *ChatService) Transcript() []domain.Turn { return s.transcript.Turns() }

// Collections returns the status of every registered collection.
func (s *ChatService) Collections() []Handle { return s.registry.Handles() }

// Logs returns the chat log sink as text.
func (s *ChatService) Logs(ctx context.Context) (string, error) {
	if s.chatLog == nil {
		return "", nil
	}
	return s.chatLog.ReadAll(ctx)
}
