package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"flowershop/internal/dialog"
)

// Sender implements dialog.Messenger over the Telegram Bot API. Outbound
// sends are throttled with a token bucket so bulk card listings stay under
// the Bot API limits.
type Sender struct {
	tg      TelegramClient
	limiter *rate.Limiter
}

// NewSender creates a rate-limited sender.
func NewSender(tg TelegramClient, messagesPerSecond float64, burst int) *Sender {
	if messagesPerSecond <= 0 {
		messagesPerSecond = 20
	}
	if burst <= 0 {
		burst = 30
	}
	return &Sender{
		tg:      tg,
		limiter: rate.NewLimiter(rate.Limit(messagesPerSecond), burst),
	}
}

// SendText delivers a Markdown text message with an optional inline keyboard.
func (s *Sender) SendText(ctx context.Context, chatID int64, text string, keyboard [][]dialog.Button) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup, ok := inlineMarkup(keyboard); ok {
		msg.ReplyMarkup = markup
	}
	_, err := s.tg.Send(msg)
	return err
}

// SendPhoto delivers a local photo file with a Markdown caption.
func (s *Sender) SendPhoto(ctx context.Context, chatID int64, path, caption string, keyboard [][]dialog.Button) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(path))
	msg.Caption = caption
	msg.ParseMode = tgbotapi.ModeMarkdown
	if markup, ok := inlineMarkup(keyboard); ok {
		msg.ReplyMarkup = markup
	}
	_, err := s.tg.Send(msg)
	return err
}

func inlineMarkup(keyboard [][]dialog.Button) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(keyboard) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(keyboard))
	for _, row := range keyboard {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Text, btn.Data))
		}
		rows = append(rows, buttons)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}
