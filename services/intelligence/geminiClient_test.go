package ai

import (
	"testing"

	genai "github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitHistory(t *testing.T) {
	first := genai.NewUserContent(genai.Text("quero agendar"))
	answer := &genai.Content{Role: "model", Parts: []genai.Part{genai.Text("Qual serviço?")}}
	latest := genai.NewUserContent(genai.Text("fisioterapia"))
	history := []*genai.Content{first, answer, latest}

	prior, last := splitHistory(history)
	require.Len(t, prior, 2)
	assert.Same(t, latest, last)

	// A chat session appends the sent turn and the reply to its history.
	prior = append(prior, genai.NewUserContent(genai.Text("outra coisa")))
	assert.Len(t, prior, 3)
	assert.Same(t, latest, history[2], "the caller's history is left untouched")
}
