package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travelchat/internal/domain"
)

func TestBranch(t *testing.T) {
	tests := []struct {
		context string
		want    PromptBranch
	}{
		{"", BranchFallback},
		{"   ", BranchFallback},
		{"\n\t\n", BranchFallback},
		{"El Morro is a fortress in San Juan.", BranchGrounded},
		{"  x  ", BranchGrounded},
	}
	for _, tt := range tests {
		t.Run(tt.want.String()+"/"+tt.context, func(t *testing.T) {
			assert.Equal(t, tt.want, Branch(tt.context))
		})
	}
}

func TestComposeFallback(t *testing.T) {
	msgs := NewComposer(false, 0).Compose("What should I pack?", "", nil)
	require.Len(t, msgs, 2)

	assert.Equal(t, domain.RoleSystem, msgs[0].Role)
	assert.Equal(t, fallbackSystemPrompt, msgs[0].Content)
	assert.NotContains(t, msgs[0].Content, "only")

	assert.Equal(t, domain.RoleUser, msgs[1].Role)
	assert.Equal(t, "What should I pack?\n\n"+fallbackInstruction, msgs[1].Content)
	assert.NotContains(t, msgs[1].Content, "Context:")
}

func TestComposeWhitespaceContextFallsBack(t *testing.T) {
	msgs := NewComposer(false, 0).Compose("hi", " \n ", nil)
	assert.Equal(t, fallbackSystemPrompt, msgs[0].Content)
}

func TestComposeGrounded(t *testing.T) {
	ctx := "El Morro is a fortress in San Juan."
	msgs := NewComposer(false, 0).Compose("Tell me about forts", ctx, nil)
	require.Len(t, msgs, 2)

	assert.Equal(t, domain.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "using only the provided context")
	assert.Contains(t, msgs[0].Content, InsufficientInformation)

	assert.Equal(t, domain.RoleUser, msgs[1].Role)
	assert.Equal(t, "Tell me about forts\n\nContext:\nEl Morro is a fortress in San Juan.\n\nAnswer using only the provided context.", msgs[1].Content)
}

func TestComposeHistory(t *testing.T) {
	history := []domain.Turn{
		{Role: domain.RoleAssistant, Content: DefaultGreeting},
		{Role: domain.RoleUser, Content: "first"},
		{Role: domain.RoleAssistant, Content: "reply one"},
		{Role: domain.RoleUser, Content: "second"},
		{Role: domain.RoleAssistant, Content: "reply two"},
	}

	t.Run("disabled", func(t *testing.T) {
		msgs := NewComposer(false, 0).Compose("third", "", history)
		assert.Len(t, msgs, 2)
	})

	t.Run("unbounded", func(t *testing.T) {
		msgs := NewComposer(true, 0).Compose("third", "", history)
		require.Len(t, msgs, 7)
		assert.Equal(t, domain.RoleSystem, msgs[0].Role)
		for i, turn := range history {
			assert.Equal(t, turn.Role, msgs[i+1].Role)
			assert.Equal(t, turn.Content, msgs[i+1].Content)
		}
		assert.Equal(t, domain.RoleUser, msgs[6].Role)
		assert.True(t, strings.HasPrefix(msgs[6].Content, "third"))
	})

	t.Run("bounded keeps most recent", func(t *testing.T) {
		msgs := NewComposer(true, 2).Compose("third", "ctx", history)
		require.Len(t, msgs, 4)
		assert.Equal(t, "second", msgs[1].Content)
		assert.Equal(t, "reply two", msgs[2].Content)
		assert.Equal(t, groundedSystemPrompt, msgs[0].Content)
	})

	t.Run("does not modify history", func(t *testing.T) {
		before := append([]domain.Turn(nil), history...)
		NewComposer(true, 1).Compose("third", "", history)
		assert.Equal(t, before, history)
	})
}
