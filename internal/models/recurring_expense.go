package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultReminderDays is how many days before billing a reminder fires.
const DefaultReminderDays = 3

// BillingCycle is how often a recurring expense is charged.
type BillingCycle string

const (
	BillingCycleWeekly    BillingCycle = "weekly"
	BillingCycleMonthly   BillingCycle = "monthly"
	BillingCycleQuarterly BillingCycle = "quarterly"
	BillingCycleYearly    BillingCycle = "yearly"
)

var weeksPerMonth = decimal.RequireFromString("4.33")

// IsValid reports whether c is a known billing cycle.
func (c BillingCycle) IsValid() bool {
	switch c {
	case BillingCycleWeekly, BillingCycleMonthly, BillingCycleQuarterly, BillingCycleYearly:
		return true
	}
	return false
}

// Advance returns the billing date one cycle after d.
func (c BillingCycle) Advance(d Date) Date {
	switch c {
	case BillingCycleWeekly:
		return d.AddDays(7)
	case BillingCycleQuarterly:
		return d.AddMonths(3)
	case BillingCycleYearly:
		return d.AddMonths(12)
	default:
		return d.AddMonths(1)
	}
}

// MonthlyCost normalizes amount to a per-month figure, rounded to cents.
func MonthlyCost(amount decimal.Decimal, cycle BillingCycle) decimal.Decimal {
	var cost decimal.Decimal
	switch cycle {
	case BillingCycleYearly:
		cost = amount.Div(decimal.NewFromInt(12))
	case BillingCycleWeekly:
		cost = amount.Mul(weeksPerMonth)
	case BillingCycleQuarterly:
		cost = amount.Div(decimal.NewFromInt(3))
	default:
		cost = amount
	}
	return cost.Round(2)
}

// RecurringExpense is a subscription or bill charged on a fixed cycle.
type RecurringExpense struct {
	Base
	UserID          string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID      string          `gorm:"type:uuid;not null;index" json:"category_id"`
	Name            string          `gorm:"size:200;not null" json:"name"`
	Description     string          `json:"description"`
	Amount          Money           `gorm:"type:numeric(10,2);not null" json:"amount"`
	BillingCycle    BillingCycle    `gorm:"size:20;not null" json:"billing_cycle"`
	NextBillingDate Date            `gorm:"not null;index" json:"next_billing_date"`
	PaymentMethod   string          `gorm:"size:50" json:"payment_method"`
	WebsiteURL      string          `json:"website_url"`
	IsActive        bool            `json:"is_active"`
	ReminderDays    int             `gorm:"not null" json:"reminder_days"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// BillingStatus holds the values derived from a recurring expense on a given day.
type BillingStatus struct {
	MonthlyCost      Money `json:"monthly_cost"`
	DaysUntilBilling int   `json:"days_until_billing"`
	NeedsReminder    bool  `json:"needs_reminder"`
	IsOverdue        bool  `json:"is_overdue"`
}

// Billing derives cost and due-ness as of today.
func (r *RecurringExpense) Billing(today Date) BillingStatus {
	days := today.DaysUntil(r.NextBillingDate)
	return BillingStatus{
		MonthlyCost:      NewMoney(MonthlyCost(r.Amount.Decimal, r.BillingCycle)),
		DaysUntilBilling: days,
		NeedsReminder:    days >= 0 && days <= r.ReminderDays,
		IsOverdue:        days < 0,
	}
}

// BillReminderDueAt is 09:00 in loc, reminderDays before the billing date.
func BillReminderDueAt(nextBillingDate Date, reminderDays int, loc *time.Location) time.Time {
	return nextBillingDate.AddDays(-reminderDays).At(9, 0, loc)
}
