package amqp

import (
	"encoding/json"
	"time"

	"billnudge/internal/notify"
)

// ReminderDueMessage is published when a reminder becomes due. Consumers get
// everything needed to render it without reading the database.
type ReminderDueMessage struct {
	ReminderID   string    `json:"reminder_id"`
	UserID       string    `json:"user_id"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	ReminderType string    `json:"reminder_type"`
	DueDate      time.Time `json:"due_date"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewReminderDueMessage creates the message for a notification.
func NewReminderDueMessage(n notify.Notification, now time.Time) *ReminderDueMessage {
	return &ReminderDueMessage{
		ReminderID:   n.ReminderID,
		UserID:       n.UserID,
		Title:        n.Title,
		Message:      n.Message,
		ReminderType: string(n.ReminderType),
		DueDate:      n.DueDate,
		Timestamp:    now,
	}
}

// ToJSON converts the message to JSON bytes
func (m *ReminderDueMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ReminderDueMessageFromJSON decodes a message body.
func ReminderDueMessageFromJSON(data []byte) (*ReminderDueMessage, error) {
	var msg ReminderDueMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
