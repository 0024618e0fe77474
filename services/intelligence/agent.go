package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nexia/models"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
)

// ApologyMessage is the reply when the model could not finish a turn within
// its attempt budget.
const ApologyMessage = "Desculpe, não consegui concluir o agendamento devido a um erro técnico. Por favor, tente novamente mais tarde."

const systemPromptTemplate = `Você é a Nexia, assistente virtual de agendamentos de uma clínica.
Data e hora atuais: %s.
Serviços disponíveis: %s.

Ajude o usuário a escolher um serviço, consultar horários livres e agendar um atendimento.
Use sempre as ferramentas para consultar horários e nunca invente disponibilidade.
Antes de agendar, confirme o nome completo do usuário, o serviço, o dia e o horário.
Dias podem ser dias da semana (por exemplo, quarta-feira) ou datas no formato AAAA-MM-DD. Horários usam HH:MM.
Responda sempre em português, de forma breve e cordial.`

// Agent runs one conversational turn at a time: it lets the model call the
// scheduling tools until it produces a text answer or runs out of attempts.
type Agent struct {
	model       ChatModel
	tools       *Toolbox
	sessions    SessionStore
	now         func() time.Time
	maxAttempts int
	logger      *zap.Logger
}

// NewAgent builds an agent. now supplies the current time, already in the
// clinic's time zone.
func NewAgent(model ChatModel, tools *Toolbox, sessions SessionStore, now func() time.Time, maxAttempts int, logger *zap.Logger) *Agent {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Agent{
		model:       model,
		tools:       tools,
		sessions:    sessions,
		now:         now,
		maxAttempts: maxAttempts,
		logger:      logger.With(zap.String("component", "agent")),
	}
}

// SystemPrompt renders the instructions for the current turn.
func (a *Agent) SystemPrompt(ctx context.Context) string {
	services := strings.Join(a.tools.ListServices(ctx), ", ")
	return fmt.Sprintf(systemPromptTemplate, a.now().Format(time.RFC3339), services)
}

// Reply appends text to the user's history, runs the model and persists the
// exchange. The returned answer is always usable, even alongside a
// persistence error.
func (a *Agent) Reply(ctx context.Context, userID, text string) (string, error) {
	a.logger.Info("incoming message", zap.String("userID", userID), zap.String("text", text))

	history, err := a.sessions.Load(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load session: %w", err)
	}
	history = append(history, models.ChatMessage{Role: models.RoleUser, Content: text})

	answer := a.run(ctx, history)

	history = append(history, models.ChatMessage{Role: models.RoleAssistant, Content: answer})
	if err := a.sessions.Save(ctx, userID, history); err != nil {
		a.logger.Error("failed to save session", zap.String("userID", userID), zap.Error(err))
		return answer, fmt.Errorf("save session: %w", err)
	}

	a.logger.Info("outgoing message", zap.String("userID", userID), zap.String("text", answer))
	return answer, nil
}

// Reset forgets the user's conversation.
func (a *Agent) Reset(ctx context.Context, userID string) error {
	return a.sessions.Clear(ctx, userID)
}

func (a *Agent) run(ctx context.Context, history []models.ChatMessage) string {
	contents := toContents(history)
	system := a.SystemPrompt(ctx)
	a.logger.Debug("system prompt", zap.String("prompt", system))

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		a.logger.Info("calling model",
			zap.Int("attempt", attempt),
			zap.Int("messages", len(contents)))

		reply, err := a.model.GenerateContent(ctx, system, contents)
		if err != nil {
			a.logger.Error("model call failed", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}

		calls, text := splitParts(reply)
		if len(calls) == 0 {
			if text == "" {
				a.logger.Warn("model returned an empty answer", zap.Int("attempt", attempt))
				continue
			}
			return text
		}

		reply.Role = "model"
		contents = append(contents, reply)
		responses := make([]genai.Part, 0, len(calls))
		for _, call := range calls {
			a.logger.Info("running tool", zap.String("tool", call.Name), zap.Any("args", call.Args))
			responses = append(responses, genai.FunctionResponse{
				Name:     call.Name,
				Response: a.tools.Call(ctx, call),
			})
		}
		contents = append(contents, genai.NewUserContent(responses...))
	}

	a.logger.Warn("max attempts reached, aborting turn", zap.Int("maxAttempts", a.maxAttempts))
	return ApologyMessage
}

// toContents maps stored history onto Gemini roles.
func toContents(history []models.ChatMessage) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, msg := range history {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		contents = append(contents, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}
	return contents
}

func splitParts(c *genai.Content) ([]genai.FunctionCall, string) {
	var (
		calls []genai.FunctionCall
		sb    strings.Builder
	)
	if c == nil {
		return nil, ""
	}
	for _, part := range c.Parts {
		switch p := part.(type) {
		case genai.Text:
			sb.WriteString(string(p))
		case genai.FunctionCall:
			calls = append(calls, p)
		}
	}
	return calls, strings.TrimSpace(sb.String())
}
