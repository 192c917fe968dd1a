package service

import (
	"strings"

	"travelchat/internal/domain"
)

// PromptBranch is the prompt policy chosen for a turn.
type PromptBranch int

const (
	// BranchFallback answers from general knowledge; no context was found.
	BranchFallback PromptBranch = iota
	// BranchGrounded answers only from the retrieved context.
	BranchGrounded
)

func (b PromptBranch) String() string {
	if b == BranchGrounded {
		return "grounded"
	}
	return "fallback"
}

// InsufficientInformation is the sentence the model must reply with when the
// context does not answer the question.
const InsufficientInformation = "I do not have enough information to answer this question."

const (
	fallbackSystemPrompt = "You are a helpful travel planner assistant for Puerto Rico."
	fallbackInstruction  = "Please answer using your travel planning expertise about Puerto Rico."

	groundedSystemPrompt = "You are a helpful travel planner assistant. " +
		"Answer the user's question using only the provided context. " +
		"Do not incorporate any external knowledge. " +
		"If the context does not contain the answer, respond with exactly: " + InsufficientInformation
	groundedInstruction = "Answer using only the provided context."
)

// Composer builds the message sequence sent to the chat model.
type Composer struct {
	includeHistory  bool
	maxHistoryTurns int
}

// NewComposer creates a composer. With includeHistory, at most
// maxHistoryTurns prior turns (0 means all) are placed between the system
// message and the new user message.
func NewComposer(includeHistory bool, maxHistoryTurns int) *Composer {
	if maxHistoryTurns < 0 {
		maxHistoryTurns = 0
	}
	return &Composer{includeHistory: includeHistory, maxHistoryTurns: maxHistoryTurns}
}

// Branch picks the prompt policy from the composed context alone.
func Branch(context string) PromptBranch {
	if strings.TrimSpace(context) == "" {
		return BranchFallback
	}
	return BranchGrounded
}

// Compose returns the system message, optional history, and the user message.
func (c *Composer) Compose(userInput, context string, history []domain.Turn) []domain.Message {
	var system, user string
	switch Branch(context) {
	case BranchGrounded:
		system = groundedSystemPrompt
		user = userInput + "\n\nContext:\n" + context + "\n\n" + groundedInstruction
	default:
		system = fallbackSystemPrompt
		user = userInput + "\n\n" + fallbackInstruction
	}

	msgs := []domain.Message{{Role: domain.RoleSystem, Content: system}}
	if c.includeHistory {
		if c.maxHistoryTurns > 0 && len(history) > c.maxHistoryTurns {
			history = history[len(history)-c.maxHistoryTurns:]
		}
		for _, t := range history {
			msgs = append(msgs, domain.Message{Role: t.Role, Content: t.Content})
		}
	}
	return append(msgs, domain.Message{Role: domain.RoleUser, Content: user})
}
