// Package bot adapts Telegram updates to dialog events and delivers the
// machine's outbound messages back through the Bot API.
package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"flowershop/internal/dialog"
)

// TelegramClient is the slice of the Bot API the bot and sender need.
// Tests substitute a recording fake.
type TelegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

// NewTelegramClient authorizes against the real Bot API.
func NewTelegramClient(token string, debug bool) (TelegramClient, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	api.Debug = debug
	return &realTelegramClient{api: api}, nil
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

type dialogMachine interface {
	Handle(ctx context.Context, ev dialog.Event) error
	Sessions() *dialog.SessionStore
}

// Bot polls Telegram updates and feeds them into the dialog machine.
type Bot struct {
	tg      TelegramClient
	machine dialogMachine
	logger  *zerolog.Logger
}

// New creates a bot over an already authorized client. The same client is
// shared with the Sender so both sides observe one rate limit.
func New(tg TelegramClient, machine dialogMachine, logger *zerolog.Logger) (*Bot, error) {
	if tg == nil {
		return nil, fmt.Errorf("telegram client is nil")
	}
	if machine == nil {
		return nil, fmt.Errorf("dialog machine is nil")
	}
	return &Bot{tg: tg, machine: machine, logger: logger}, nil
}

// Start begins polling updates and blocks until ctx is cancelled.
// Each update runs under a request-scoped logger.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("flowershop bot authorized")

	go b.cleanupLoop(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			requestID := uuid.New().String()
			l := b.logger.With().Str("request_id", requestID).Logger()
			updateCtx := l.WithContext(ctx)
			b.handleUpdate(updateCtx, &update)
		}
	}
}

func (b *Bot) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := b.machine.Sessions().Cleanup(); removed > 0 {
				b.logger.Debug().Int("removed", removed).Msg("expired dialog sessions dropped")
			}
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	l := zerolog.Ctx(ctx)
	if update.CallbackQuery != nil {
		l.Debug().
			Int64("user_id", update.CallbackQuery.From.ID).
			Str("data", update.CallbackQuery.Data).
			Msg("handling callback query")
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		l.Debug().
			Int64("user_id", update.Message.From.ID).
			Str("text", update.Message.Text).
			Msg("handling message")
		b.handleMessage(ctx, update.Message)
		return
	}
}

func (b *Bot) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if cq == nil || cq.Message == nil {
		return
	}
	_ = b.answerCallback(cq.ID)

	_ = b.machine.Handle(ctx, dialog.Event{
		Type:     dialog.EventButton,
		Payload:  cq.Data,
		UserID:   cq.From.ID,
		ChatID:   cq.Message.Chat.ID,
		Username: displayName(cq.From),
	})
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.From == nil {
		return
	}

	ev := dialog.Event{
		Payload:  msg.Text,
		UserID:   msg.From.ID,
		ChatID:   msg.Chat.ID,
		Username: displayName(msg.From),
	}
	if msg.IsCommand() {
		ev.Type = dialog.EventCommand
	} else {
		ev.Type = dialog.EventText
	}

	_ = b.machine.Handle(ctx, ev)
}

func (b *Bot) answerCallback(id string) error {
	_, err := b.tg.Request(tgbotapi.NewCallback(id, ""))
	return err
}

func displayName(u *tgbotapi.User) string {
	if u == nil {
		return ""
	}
	if u.UserName != "" {
		return u.UserName
	}
	return u.FirstName
}
