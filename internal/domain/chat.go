package domain

import (
	"errors"
	"time"
)

// Role tags a message or conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of a conversation transcript.
type Turn struct {
	Role    Role
	Content string
}

// Message is one element of the sequence submitted to a chat model.
type Message struct {
	Role    Role
	Content string
}

// GenerationParams are passed through to the chat model unchanged.
// Zero values mean "not set" and are not sent.
type GenerationParams struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Completion is the outcome of a chat model call: either a reply or a failure.
type Completion struct {
	Reply string
	Err   error
}

// ErrEmptyReply is returned when a model answers with no content.
var ErrEmptyReply = errors.New("empty model reply")

// OK reports whether the call produced a reply.
func (c Completion) OK() bool { return c.Err == nil }

// Succeeded wraps a reply.
func Succeeded(reply string) Completion { return Completion{Reply: reply} }

// Failed wraps a failure reason.
func Failed(err error) Completion {
	if err == nil {
		err = ErrEmptyReply
	}
	return Completion{Err: err}
}

// ChatLogEntry records one completed (user input, model reply) pair.
type ChatLogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"session_id,omitempty"`
	UserInput  string    `json:"user_input"`
	ModelReply string    `json:"model_reply"`
}
