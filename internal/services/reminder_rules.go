package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"billnudge/internal/logger"
	"billnudge/internal/models"
)

// createBillReminder derives and stores the bill_due reminder of a recurring expense.
func createBillReminder(tx *gorm.DB, re *models.RecurringExpense, loc *time.Location) (*models.Reminder, error) {
	reminder := models.NewBillReminder(re, loc)
	if err := tx.Create(reminder).Error; err != nil {
		return nil, err
	}
	logger.Get().Infow("bill reminder derived",
		"recurring_expense_id", re.ID,
		"reminder_id", reminder.ID,
		"due_date", reminder.DueDate,
	)
	return reminder, nil
}

// replaceBillReminder deletes the open bill_due reminders of a recurring
// expense and derives a fresh one. It returns the new reminder and the IDs of
// the removed ones.
func replaceBillReminder(tx *gorm.DB, re *models.RecurringExpense, loc *time.Location) (*models.Reminder, []string, error) {
	open := tx.Model(&models.Reminder{}).Where(
		"recurring_expense_id = ? AND reminder_type = ? AND is_completed = ?",
		re.ID, models.ReminderTypeBillDue, false,
	)

	removed := []string{}
	if err := open.Pluck("id", &removed).Error; err != nil {
		return nil, nil, err
	}
	if len(removed) > 0 {
		if err := tx.Where("id IN ?", removed).Delete(&models.Reminder{}).Error; err != nil {
			return nil, nil, err
		}
	}

	reminder, err := createBillReminder(tx, re, loc)
	if err != nil {
		return nil, nil, err
	}
	return reminder, removed, nil
}

// spentInPeriod sums the user's expenses in a category over [from, to).
func spentInPeriod(tx *gorm.DB, userID, categoryID string, from, to models.Date) (decimal.Decimal, error) {
	var amounts []decimal.Decimal
	err := tx.Model(&models.Transaction{}).
		Where("user_id = ? AND category_id = ? AND transaction_type = ? AND date >= ? AND date < ?",
			userID, categoryID, models.TransactionTypeExpense, from, to).
		Pluck("amount", &amounts).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.Sum(decimal.Zero, amounts...), nil
}

// budgetProgress computes the derived figures of a budget from its period's expenses.
func budgetProgress(tx *gorm.DB, b *models.Budget) (models.BudgetProgress, error) {
	from, to := b.Period()
	spent, err := spentInPeriod(tx, b.UserID, b.CategoryID, from, to)
	if err != nil {
		return models.BudgetProgress{}, err
	}
	return b.Progress(spent), nil
}

// evaluateBudgetAlert stores a budget_check reminder when the budget crossed
// its threshold and no open budget_check reminder exists for it yet. It
// returns the new reminder, or nil, together with the current progress.
func evaluateBudgetAlert(tx *gorm.DB, b *models.Budget, categoryName string, now time.Time) (*models.Reminder, models.BudgetProgress, error) {
	progress, err := budgetProgress(tx, b)
	if err != nil {
		return nil, progress, err
	}

	reminder := models.NewBudgetReminder(b, categoryName, progress, now)
	if reminder == nil {
		return nil, progress, nil
	}

	var open int64
	if err := tx.Model(&models.Reminder{}).
		Where("budget_id = ? AND reminder_type = ? AND is_completed = ?", b.ID, models.ReminderTypeBudgetCheck, false).
		Count(&open).Error; err != nil {
		return nil, progress, err
	}
	if open > 0 {
		return nil, progress, nil
	}

	if err := tx.Create(reminder).Error; err != nil {
		return nil, progress, err
	}
	logger.Get().Infow("budget alert raised",
		"budget_id", b.ID,
		"reminder_id", reminder.ID,
		"percentage_used", progress.PercentageUsed,
	)
	return reminder, progress, nil
}

// alertForExpense re-evaluates the budget covering an expense, if there is one.
func alertForExpense(tx *gorm.DB, userID, categoryID string, date models.Date, now time.Time) ([]models.Reminder, error) {
	var budget models.Budget
	err := tx.Preload("Category").
		Where("user_id = ? AND category_id = ? AND month = ? AND year = ?", userID, categoryID, int(date.Month()), date.Year()).
		First(&budget).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []models.Reminder{}, nil
	}
	if err != nil {
		return nil, err
	}

	reminder, _, err := evaluateBudgetAlert(tx, &budget, categoryName(budget.Category), now)
	if err != nil {
		return nil, err
	}
	if reminder == nil {
		return []models.Reminder{}, nil
	}
	return []models.Reminder{*reminder}, nil
}

func categoryName(c *models.Category) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func toTransactionDetail(t models.Transaction) TransactionDetail {
	d := TransactionDetail{Transaction: t}
	if t.Category != nil {
		d.CategoryName = t.Category.Name
		d.CategoryIcon = t.Category.Icon
		d.CategoryColor = t.Category.Color
	}
	if t.RecurringExpense != nil {
		name := t.RecurringExpense.Name
		d.RecurringExpenseName = &name
	}
	return d
}

func toRecurringExpenseDetail(re models.RecurringExpense, today models.Date) RecurringExpenseDetail {
	d := RecurringExpenseDetail{
		RecurringExpense: re,
		BillingStatus:    re.Billing(today),
	}
	if re.Category != nil {
		d.CategoryName = re.Category.Name
		d.CategoryIcon = re.Category.Icon
		d.CategoryColor = re.Category.Color
	}
	return d
}

func toBudgetDetail(b models.Budget, progress models.BudgetProgress) BudgetDetail {
	d := BudgetDetail{Budget: b, BudgetProgress: progress}
	if b.Category != nil {
		d.CategoryName = b.Category.Name
		d.CategoryIcon = b.Category.Icon
		d.CategoryColor = b.Category.Color
	}
	return d
}

func toReminderDetail(r models.Reminder, now time.Time) ReminderDetail {
	d := ReminderDetail{Reminder: r, ReminderState: r.State(now)}
	if r.RecurringExpense != nil {
		name := r.RecurringExpense.Name
		d.RecurringExpenseName = &name
	}
	if r.Budget != nil && r.Budget.Category != nil {
		name := r.Budget.Category.Name
		d.BudgetCategoryName = &name
	}
	return d
}
