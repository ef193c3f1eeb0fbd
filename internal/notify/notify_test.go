package notify

import (
	"context"
	"testing"
	"time"

	"billnudge/internal/models"
)

func TestFromReminder(t *testing.T) {
	chat := int64(99)
	due := time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)
	r := &models.Reminder{
		UserID:       "user-1",
		Title:        "Bill Netflix",
		Message:      "Bill Netflix (15.99€) due on 20/03/2025",
		ReminderType: models.ReminderTypeBillDue,
		DueDate:      due,
	}
	r.ID = "rem-1"

	n := FromReminder(r, &chat)

	if n.ReminderID != "rem-1" || n.UserID != "user-1" {
		t.Errorf("unexpected ids %s/%s", n.ReminderID, n.UserID)
	}
	if !n.DueDate.Equal(due) {
		t.Errorf("expected due %s, got %s", due, n.DueDate)
	}
	if n.TelegramChatID == nil || *n.TelegramChatID != chat {
		t.Error("expected chat id to be carried")
	}
}

func TestNotificationText(t *testing.T) {
	tests := []struct {
		name string
		n    Notification
		want string
	}{
		{
			name: "bill with message",
			n:    Notification{Title: "Bill Netflix", Message: "due soon", ReminderType: models.ReminderTypeBillDue},
			want: "💳 Bill Netflix\ndue soon",
		},
		{
			name: "budget",
			n:    Notification{Title: "Budget Food at 90%", ReminderType: models.ReminderTypeBudgetCheck},
			want: "📊 Budget Food at 90%",
		},
		{
			name: "custom",
			n:    Notification{Title: "Call the bank", ReminderType: models.ReminderTypeCustom},
			want: "🔔 Call the bank",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogNotifier(t *testing.T) {
	var n Notifier = LogNotifier{}
	if n.Name() != "log" {
		t.Errorf("expected name log, got %s", n.Name())
	}
	if err := n.Notify(context.Background(), Notification{ReminderID: "r"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
