// Package telegram delivers due reminders as Telegram chat messages.
package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"billnudge/internal/logger"
	"billnudge/internal/notify"
)

type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Sender implements notify.Notifier on top of the Bot API.
type Sender struct {
	api botAPI
}

// NewSender authorizes the bot token.
func NewSender(token string) (*Sender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	logger.Named("telegram").Infow("bot authorized", "account", api.Self.UserName)
	return &Sender{api: api}, nil
}

// Name implements notify.Notifier.
func (s *Sender) Name() string { return "telegram" }

// Notify sends the reminder text to the owner's linked chat. Users without a
// linked chat are skipped.
func (s *Sender) Notify(ctx context.Context, n notify.Notification) error {
	if n.TelegramChatID == nil {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(*n.TelegramChatID, n.Text())
	msg.DisableWebPagePreview = true
	if _, err := s.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
