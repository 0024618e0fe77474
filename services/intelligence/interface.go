package ai

import (
	"context"

	"nexia/models"

	genai "github.com/google/generative-ai-go/genai"
)

// SessionStore persists the text history of each user's conversation.
// Tool calls made inside a turn are never stored.
type SessionStore interface {
	Load(ctx context.Context, userID string) ([]models.ChatMessage, error)
	Save(ctx context.Context, userID string, messages []models.ChatMessage) error
	Clear(ctx context.Context, userID string) error
}

// ChatModel produces the next model turn for a conversation. history ends
// with the turn the model must answer; the returned content may carry text,
// function calls or both.
type ChatModel interface {
	GenerateContent(ctx context.Context, systemPrompt string, history []*genai.Content) (*genai.Content, error)
}
