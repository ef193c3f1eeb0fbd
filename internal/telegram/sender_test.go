package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"billnudge/internal/models"
	"billnudge/internal/notify"
)

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestSenderNotify(t *testing.T) {
	chat := int64(4242)

	t.Run("sends_to_linked_chat", func(t *testing.T) {
		bot := &fakeBot{}
		s := &Sender{api: bot}
		n := notify.Notification{
			Title:          "Bill Netflix",
			Message:        "due tomorrow",
			ReminderType:   models.ReminderTypeBillDue,
			TelegramChatID: &chat,
		}

		if err := s.Notify(context.Background(), n); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(bot.sent) != 1 {
			t.Fatalf("expected 1 message, got %d", len(bot.sent))
		}
		if bot.sent[0].ChatID != chat {
			t.Errorf("expected chat %d, got %d", chat, bot.sent[0].ChatID)
		}
		if bot.sent[0].Text != n.Text() {
			t.Errorf("unexpected text %q", bot.sent[0].Text)
		}
	})

	t.Run("skips_unlinked_user", func(t *testing.T) {
		bot := &fakeBot{}
		s := &Sender{api: bot}
		if err := s.Notify(context.Background(), notify.Notification{Title: "x"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(bot.sent) != 0 {
			t.Errorf("expected no message, got %d", len(bot.sent))
		}
	})

	t.Run("send_failure", func(t *testing.T) {
		sendErr := errors.New("Forbidden: bot was blocked by the user")
		s := &Sender{api: &fakeBot{err: sendErr}}
		err := s.Notify(context.Background(), notify.Notification{Title: "x", TelegramChatID: &chat})
		if !errors.Is(err, sendErr) {
			t.Errorf("expected wrapped send error, got %v", err)
		}
	})

	t.Run("cancelled_context", func(t *testing.T) {
		bot := &fakeBot{}
		s := &Sender{api: bot}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := s.Notify(ctx, notify.Notification{Title: "x", TelegramChatID: &chat}); err == nil {
			t.Error("expected context error")
		}
		if len(bot.sent) != 0 {
			t.Error("expected nothing sent")
		}
	})

	if (&Sender{}).Name() != "telegram" {
		t.Error("unexpected name")
	}
}
