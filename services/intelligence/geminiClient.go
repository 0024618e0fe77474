package ai

import (
	"context"
	"errors"
	"fmt"
	"slices"

	genai "github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptyResponse is returned when Gemini answers without any candidate.
var ErrEmptyResponse = errors.New("gemini returned no candidates")

// GeminiModel is the ChatModel backed by the Gemini API with function
// calling enabled for the given tools.
type GeminiModel struct {
	client *genai.Client
	name   string
	tools  []*genai.Tool
}

func NewGeminiModel(ctx context.Context, apiKey, modelName string, decls []*genai.FunctionDeclaration, opts ...option.ClientOption) (*GeminiModel, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiModel{
		client: client,
		name:   modelName,
		tools:  []*genai.Tool{{FunctionDeclarations: decls}},
	}, nil
}

// GenerateContent sends history to the model. A fresh GenerativeModel is
// built per call since the system prompt carries the current time.
func (g *GeminiModel) GenerateContent(ctx context.Context, systemPrompt string, history []*genai.Content) (*genai.Content, error) {
	if len(history) == 0 {
		return nil, errors.New("empty conversation")
	}
	model := g.client.GenerativeModel(g.name)
	model.Tools = g.tools
	model.SystemInstruction = genai.NewUserContent(genai.Text(systemPrompt))

	cs := model.StartChat()
	var last *genai.Content
	cs.History, last = splitHistory(history)

	resp, err := cs.SendMessage(ctx, last.Parts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}
	return resp.Candidates[0].Content, nil
}

// splitHistory separates the turn being sent from the turns before it. The
// prior turns are copied since the chat session appends to its history.
func splitHistory(history []*genai.Content) ([]*genai.Content, *genai.Content) {
	n := len(history) - 1
	return slices.Clone(history[:n]), history[n]
}

func (g *GeminiModel) Close() error {
	return g.client.Close()
}
