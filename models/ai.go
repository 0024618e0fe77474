package models

// Chat roles stored in a session.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one role-tagged entry of a conversation history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Session is the persisted conversation of one user.
type Session struct {
	Messages []ChatMessage `json:"messages"`
}

// AIRequest is the payload coming from the frontend into /api/ai/chat.
// An empty UserID starts an anonymous conversation.
type AIRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text" binding:"required"`
}

// AIResponse is what the chat handler returns to the frontend.
type AIResponse struct {
	UserID       string `json:"user_id"`
	ResponseText string `json:"response"`
}
