package models

import (
	"fmt"
	"time"
)

// ReminderType classifies what a reminder is about.
type ReminderType string

const (
	ReminderTypeBillDue      ReminderType = "bill_due"
	ReminderTypeBudgetCheck  ReminderType = "budget_check"
	ReminderTypeWeeklyReview ReminderType = "weekly_review"
	ReminderTypeCustom       ReminderType = "custom"
)

// IsValid reports whether t is a known reminder type.
func (t ReminderType) IsValid() bool {
	switch t {
	case ReminderTypeBillDue, ReminderTypeBudgetCheck, ReminderTypeWeeklyReview, ReminderTypeCustom:
		return true
	}
	return false
}

// ReminderFrequency controls whether completing a reminder schedules another.
type ReminderFrequency string

const (
	FrequencyOnce    ReminderFrequency = "once"
	FrequencyWeekly  ReminderFrequency = "weekly"
	FrequencyMonthly ReminderFrequency = "monthly"
)

// IsValid reports whether f is a known frequency.
func (f ReminderFrequency) IsValid() bool {
	return f == FrequencyOnce || f == FrequencyWeekly || f == FrequencyMonthly
}

// Interval is the fixed offset between occurrences. Monthly is 30 days,
// not a calendar month.
func (f ReminderFrequency) Interval() time.Duration {
	switch f {
	case FrequencyWeekly:
		return 7 * 24 * time.Hour
	case FrequencyMonthly:
		return 30 * 24 * time.Hour
	}
	return 0
}

// ReminderStatus is the display status of a reminder.
type ReminderStatus string

const (
	StatusCompleted ReminderStatus = "completed"
	StatusSnoozed   ReminderStatus = "snoozed"
	StatusOverdue   ReminderStatus = "overdue"
	StatusUrgent    ReminderStatus = "urgent"
	StatusUpcoming  ReminderStatus = "upcoming"
)

// IsValid reports whether s is a known status.
func (s ReminderStatus) IsValid() bool {
	switch s {
	case StatusCompleted, StatusSnoozed, StatusOverdue, StatusUrgent, StatusUpcoming:
		return true
	}
	return false
}

// Reminder is a prompt shown to the user at a due instant.
type Reminder struct {
	Base
	UserID             string            `gorm:"type:uuid;not null;index" json:"user_id"`
	Title              string            `gorm:"size:200;not null" json:"title"`
	Message            string            `json:"message"`
	ReminderType       ReminderType      `gorm:"size:20;not null" json:"reminder_type"`
	DueDate            time.Time         `gorm:"not null;index" json:"due_date"`
	Frequency          ReminderFrequency `gorm:"size:10;not null" json:"frequency"`
	RecurringExpenseID *string           `gorm:"type:uuid;index" json:"recurring_expense_id"`
	BudgetID           *string           `gorm:"type:uuid;index" json:"budget_id"`
	IsCompleted        bool              `gorm:"index" json:"is_completed"`
	CompletedAt        *time.Time        `json:"completed_at"`
	SnoozedUntil       *time.Time        `json:"snoozed_until"`
	NotifiedAt         *time.Time        `json:"notified_at,omitempty"`

	// Relationships
	RecurringExpense *RecurringExpense `gorm:"foreignKey:RecurringExpenseID" json:"-"`
	Budget           *Budget           `gorm:"foreignKey:BudgetID" json:"-"`
}

// ReminderState holds the values derived from a reminder at an instant.
type ReminderState struct {
	Status       ReminderStatus `json:"status"`
	DaysUntilDue int            `json:"days_until_due"`
	IsOverdue    bool           `json:"is_overdue"`
	IsSnoozed    bool           `json:"is_snoozed"`
}

// SnoozedAt reports whether the reminder is postponed past now.
func (r *Reminder) SnoozedAt(now time.Time) bool {
	return r.SnoozedUntil != nil && now.Before(*r.SnoozedUntil)
}

// OverdueAt reports whether the due instant has passed on an open reminder.
func (r *Reminder) OverdueAt(now time.Time) bool {
	return !r.IsCompleted && now.After(r.DueDate)
}

// DaysUntilDueAt counts calendar days between now and the due date, both
// taken in now's location.
func (r *Reminder) DaysUntilDueAt(now time.Time) int {
	return DateOf(now).DaysUntil(DateOf(r.DueDate.In(now.Location())))
}

// State derives status with precedence completed > snoozed > overdue >
// urgent (due within a day) > upcoming.
func (r *Reminder) State(now time.Time) ReminderState {
	st := ReminderState{
		DaysUntilDue: r.DaysUntilDueAt(now),
		IsOverdue:    r.OverdueAt(now),
		IsSnoozed:    r.SnoozedAt(now),
	}
	switch {
	case r.IsCompleted:
		st.Status = StatusCompleted
	case st.IsSnoozed:
		st.Status = StatusSnoozed
	case st.IsOverdue:
		st.Status = StatusOverdue
	case st.DaysUntilDue <= 1:
		st.Status = StatusUrgent
	default:
		st.Status = StatusUpcoming
	}
	return st
}

// Snooze postpones the reminder until now + hours, replacing any earlier snooze.
func (r *Reminder) Snooze(now time.Time, hours int) {
	until := now.Add(time.Duration(hours) * time.Hour)
	r.SnoozedUntil = &until
}

// MarkCompleted closes the reminder. It returns false when it was already closed.
func (r *Reminder) MarkCompleted(now time.Time) bool {
	if r.IsCompleted {
		return false
	}
	r.IsCompleted = true
	r.CompletedAt = &now
	return true
}

// Successor returns the next occurrence of a recurring reminder, or nil for
// one-off reminders.
func (r *Reminder) Successor() *Reminder {
	interval := r.Frequency.Interval()
	if interval == 0 {
		return nil
	}
	return &Reminder{
		UserID:             r.UserID,
		Title:              r.Title,
		Message:            r.Message,
		ReminderType:       r.ReminderType,
		DueDate:            r.DueDate.Add(interval),
		Frequency:          r.Frequency,
		RecurringExpenseID: r.RecurringExpenseID,
		BudgetID:           r.BudgetID,
	}
}

// Deliverable reports whether the notifier should send this reminder now:
// due, open, not snoozed, and not yet sent since it last became active.
func (r *Reminder) Deliverable(now time.Time) bool {
	if r.IsCompleted || r.DueDate.After(now) || r.SnoozedAt(now) {
		return false
	}
	if r.NotifiedAt == nil {
		return true
	}
	return r.SnoozedUntil != nil && r.NotifiedAt.Before(*r.SnoozedUntil)
}

// NewBillReminder builds the bill_due reminder for a recurring expense.
func NewBillReminder(re *RecurringExpense, loc *time.Location) *Reminder {
	id := re.ID
	return &Reminder{
		UserID:             re.UserID,
		Title:              fmt.Sprintf("Bill %s", re.Name),
		Message:            fmt.Sprintf("Bill %s (%s€) due on %s", re.Name, re.Amount, re.NextBillingDate.Format("02/01/2006")),
		ReminderType:       ReminderTypeBillDue,
		DueDate:            BillReminderDueAt(re.NextBillingDate, re.ReminderDays, loc).UTC(),
		Frequency:          FrequencyOnce,
		RecurringExpenseID: &id,
	}
}

// NewBudgetReminder builds the budget_check reminder for a budget whose
// progress crossed its threshold. It returns nil when no alert is due.
func NewBudgetReminder(b *Budget, categoryName string, progress BudgetProgress, now time.Time) *Reminder {
	if !progress.ShouldAlert {
		return nil
	}
	id := b.ID
	return &Reminder{
		UserID:       b.UserID,
		Title:        fmt.Sprintf("Budget %s at %.0f%%", categoryName, progress.PercentageUsed),
		Message:      fmt.Sprintf("You've used %.0f%% of your %s budget this month.", progress.PercentageUsed, categoryName),
		ReminderType: ReminderTypeBudgetCheck,
		DueDate:      now.UTC(),
		Frequency:    FrequencyOnce,
		BudgetID:     &id,
	}
}
