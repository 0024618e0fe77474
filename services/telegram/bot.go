package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

const (
	greeting      = "Olá! Sou seu assistente virtual. Como posso ajudar?"
	fallbackReply = "Desculpe, não entendi sua solicitação."
	retryDelay    = 3 * time.Second
)

// Responder answers one user message.
type Responder interface {
	Reply(ctx context.Context, userID, text string) (string, error)
}

// contextClient binds every Bot API request to the polling context so a
// shutdown interrupts a long poll in flight.
type contextClient struct {
	ctx    context.Context
	client *http.Client
}

func (c contextClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req.WithContext(c.ctx))
}

// Bot long-polls the Telegram Bot API and turns every text message into one
// agent turn keyed by the sender's Telegram id.
type Bot struct {
	token       string
	endpoint    string
	client      *http.Client
	agent       Responder
	pollTimeout time.Duration
	logger      *zap.Logger
}

type Option func(*Bot)

// WithBaseURL points the bot at another Bot API server.
func WithBaseURL(url string) Option {
	return func(b *Bot) { b.endpoint = strings.TrimSuffix(url, "/") + "/bot%s/%s" }
}

func NewBot(token string, agent Responder, pollTimeout time.Duration, logger *zap.Logger, opts ...Option) *Bot {
	b := &Bot{
		token:       token,
		endpoint:    tgbotapi.APIEndpoint,
		client:      &http.Client{Timeout: pollTimeout + 10*time.Second},
		agent:       agent,
		pollTimeout: pollTimeout,
		logger:      logger.With(zap.String("component", "telegram")),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run polls until ctx is cancelled. Transport errors are logged and retried;
// only a failed token check at startup is returned.
func (b *Bot) Run(ctx context.Context) error {
	api, err := tgbotapi.NewBotAPIWithClient(b.token, b.endpoint, contextClient{ctx: ctx, client: b.client})
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connect to telegram: %w", err)
	}
	b.logger.Info("telegram bot polling started", zap.String("username", api.Self.UserName))

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = int(b.pollTimeout.Seconds())
	cfg.AllowedUpdates = []string{"message"}
	for {
		updates, err := api.GetUpdates(cfg)
		if err != nil {
			if ctx.Err() != nil {
				b.logger.Info("telegram bot polling stopped")
				return nil
			}
			b.logger.Error("failed to fetch telegram updates", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(retryDelay):
			}
			continue
		}
		for _, u := range updates {
			cfg.Offset = u.UpdateID + 1
			b.handle(ctx, api, u)
		}
	}
}

func (b *Bot) handle(ctx context.Context, api *tgbotapi.BotAPI, u tgbotapi.Update) {
	msg := u.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		return
	}
	userID := strconv.FormatInt(msg.From.ID, 10)

	var answer string
	if isStartCommand(msg.Text) {
		answer = greeting
	} else {
		reply, err := b.agent.Reply(ctx, userID, msg.Text)
		if err != nil {
			b.logger.Error("agent turn failed", zap.String("userID", userID), zap.Error(err))
		}
		answer = reply
	}
	if answer == "" {
		answer = fallbackReply
	}

	if _, err := api.Send(tgbotapi.NewMessage(msg.Chat.ID, answer)); err != nil {
		b.logger.Error("failed to send telegram message", zap.Int64("chatID", msg.Chat.ID), zap.Error(err))
	}
}

func isStartCommand(text string) bool {
	cmd, _, _ := strings.Cut(strings.TrimSpace(text), " ")
	cmd, _, _ = strings.Cut(cmd, "@")
	return cmd == "/start"
}
