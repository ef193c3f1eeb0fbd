package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAlertThreshold is the fraction of a budget that triggers an alert.
var DefaultAlertThreshold = decimal.RequireFromString("0.80")

var hundred = decimal.NewFromInt(100)

// Budget is a monthly spending limit for one category.
type Budget struct {
	Base
	UserID         string          `gorm:"type:uuid;not null;uniqueIndex:uq_budgets_user_category_period" json:"user_id"`
	CategoryID     string          `gorm:"type:uuid;not null;uniqueIndex:uq_budgets_user_category_period" json:"category_id"`
	Month          int             `gorm:"not null;uniqueIndex:uq_budgets_user_category_period" json:"month"`
	Year           int             `gorm:"not null;uniqueIndex:uq_budgets_user_category_period" json:"year"`
	BudgetAmount   Money           `gorm:"type:numeric(10,2);not null" json:"budget_amount"`
	AlertThreshold decimal.Decimal `gorm:"type:numeric(3,2);not null" json:"alert_threshold"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"-"`
}

// BudgetProgress holds the spending figures derived for a budget.
type BudgetProgress struct {
	SpentAmount     Money   `json:"spent_amount"`
	RemainingBudget Money   `json:"remaining_budget"`
	PercentageUsed  float64 `json:"percentage_used"`
	ShouldAlert     bool    `json:"should_alert"`
}

// Period returns the half-open date range [first of month, first of next month).
func (b *Budget) Period() (Date, Date) {
	start := NewDate(b.Year, time.Month(b.Month), 1)
	return start, start.AddMonths(1)
}

// Progress derives the budget figures from the amount spent in the period.
// Remaining budget goes negative when overspent.
func (b *Budget) Progress(spent decimal.Decimal) BudgetProgress {
	pct := decimal.Zero
	if !b.BudgetAmount.IsZero() {
		pct = spent.Div(b.BudgetAmount.Decimal).Mul(hundred)
	}
	pctFloat, _ := pct.Float64()
	return BudgetProgress{
		SpentAmount:     NewMoney(spent),
		RemainingBudget: NewMoney(b.BudgetAmount.Sub(spent)),
		PercentageUsed:  pctFloat,
		ShouldAlert:     pct.GreaterThanOrEqual(b.AlertThreshold.Mul(hundred)),
	}
}
