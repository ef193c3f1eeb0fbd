// Package notify defines the payload and contract shared by reminder delivery sinks.
package notify

import (
	"context"
	"fmt"
	"time"

	"billnudge/internal/logger"
	"billnudge/internal/models"
)

// Notification is a due reminder ready to be delivered.
type Notification struct {
	ReminderID     string              `json:"reminder_id"`
	UserID         string              `json:"user_id"`
	Title          string              `json:"title"`
	Message        string              `json:"message"`
	ReminderType   models.ReminderType `json:"reminder_type"`
	DueDate        time.Time           `json:"due_date"`
	TelegramChatID *int64              `json:"-"`
}

// FromReminder builds the notification for a reminder and its owner's chat, if any.
func FromReminder(r *models.Reminder, telegramChatID *int64) Notification {
	return Notification{
		ReminderID:     r.ID,
		UserID:         r.UserID,
		Title:          r.Title,
		Message:        r.Message,
		ReminderType:   r.ReminderType,
		DueDate:        r.DueDate,
		TelegramChatID: telegramChatID,
	}
}

// Text renders the notification as a short human-readable message.
func (n Notification) Text() string {
	icon := "🔔"
	switch n.ReminderType {
	case models.ReminderTypeBillDue:
		icon = "💳"
	case models.ReminderTypeBudgetCheck:
		icon = "📊"
	case models.ReminderTypeWeeklyReview:
		icon = "🗓"
	}
	if n.Message == "" {
		return fmt.Sprintf("%s %s", icon, n.Title)
	}
	return fmt.Sprintf("%s %s\n%s", icon, n.Title, n.Message)
}

// Notifier delivers a notification to one sink.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, n Notification) error
}

// LogNotifier writes notifications to the application log. It is the sink
// used when no external channel is configured.
type LogNotifier struct{}

// Name implements Notifier.
func (LogNotifier) Name() string { return "log" }

// Notify implements Notifier.
func (LogNotifier) Notify(_ context.Context, n Notification) error {
	logger.Named("notify").Infow("reminder due",
		"reminder_id", n.ReminderID,
		"user_id", n.UserID,
		"reminder_type", n.ReminderType,
		"title", n.Title,
	)
	return nil
}
