// Package notify delivers alerts to chat and fans them out across sinks.
package notify

import (
	"context"
	"fmt"

	"VixNav/internal/domain/models"
	"VixNav/internal/domain/repository"

	tgbot "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the subset of *tgbot.BotAPI used here.
type Sender interface {
	Send(c tgbot.Chattable) (tgbot.Message, error)
}

// Telegram posts alert summaries to one chat.
type Telegram struct {
	bot    Sender
	chatID int64
}

var _ repository.AlertSink = (*Telegram)(nil)

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	b, err := tgbot.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return NewTelegramWithSender(b, chatID), nil
}

func NewTelegramWithSender(bot Sender, chatID int64) *Telegram {
	return &Telegram{bot: bot, chatID: chatID}
}

func (t *Telegram) Name() string { return "telegram" }

func (t *Telegram) Send(ctx context.Context, a *models.Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbot.NewMessage(t.chatID, a.Summary())
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
