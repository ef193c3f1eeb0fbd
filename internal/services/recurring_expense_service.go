package services

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "billnudge/internal/errors"
	"billnudge/internal/models"
	"billnudge/internal/pagination"
)

// recurringExpenseService handles subscriptions, their bill reminders and payments.
type recurringExpenseService struct {
	db   *gorm.DB
	opts options
}

// NewRecurringExpenseService creates a new RecurringExpenseServicer.
func NewRecurringExpenseService(db *gorm.DB, opts ...Option) RecurringExpenseServicer {
	return &recurringExpenseService{db: db, opts: newOptions(opts)}
}

// CreateRecurringExpense stores a subscription and derives its bill_due reminder.
func (s *recurringExpenseService) CreateRecurringExpense(userID string, in RecurringExpenseInput) (*RecurringExpenseResult, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
	}
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if err := validateAmount("amount", in.Amount); err != nil {
		return nil, err
	}
	if !in.BillingCycle.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid billing cycle")
	}
	if in.NextBillingDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "next billing date is required")
	}

	reminderDays := models.DefaultReminderDays
	if in.ReminderDays != nil {
		reminderDays = *in.ReminderDays
	}
	if reminderDays < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "reminder days cannot be negative")
	}
	isActive := true
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	category, err := findCategory(s.db, in.CategoryID)
	if err != nil {
		return nil, err
	}

	re := &models.RecurringExpense{
		UserID:          userID,
		CategoryID:      category.ID,
		Name:            in.Name,
		Description:     in.Description,
		Amount:          models.NewMoney(in.Amount),
		BillingCycle:    in.BillingCycle,
		NextBillingDate: in.NextBillingDate,
		PaymentMethod:   in.PaymentMethod,
		WebsiteURL:      in.WebsiteURL,
		IsActive:        isActive,
		ReminderDays:    reminderDays,
	}

	var reminder *models.Reminder
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(re).Error; err != nil {
			return err
		}
		var txErr error
		reminder, txErr = createBillReminder(tx, re, s.opts.loc)
		return txErr
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	re.Category = category
	detail := toRecurringExpenseDetail(*re, s.opts.today())
	return &RecurringExpenseResult{
		RecurringExpense:   &detail,
		Reminder:           reminder,
		RemovedReminderIDs: []string{},
	}, nil
}

// GetUserRecurringExpenses lists the user's subscriptions by next billing date.
func (s *recurringExpenseService) GetUserRecurringExpenses(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[RecurringExpenseDetail], error) {
	page.Defaults()

	base := s.db.Model(&models.RecurringExpense{}).Where("user_id = ?", userID)
	if isActive != nil {
		base = base.Where("is_active = ?", *isActive)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var expenses []models.RecurringExpense
	if err := base.Preload("Category").
		Order("next_billing_date ASC").Order("name ASC").
		Scopes(pagination.Paginate(page)).
		Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	today := s.opts.today()
	result := pagination.MapPage(
		pagination.NewPageResponse(expenses, page.Page, page.PageSize, totalItems),
		func(re models.RecurringExpense) RecurringExpenseDetail { return toRecurringExpenseDetail(re, today) },
	)
	return &result, nil
}

// GetRecurringExpenseByID returns one of the user's subscriptions with its billing status.
func (s *recurringExpenseService) GetRecurringExpenseByID(userID, id string) (*RecurringExpenseDetail, error) {
	re, err := s.loadDetailed(s.db, userID, id)
	if err != nil {
		return nil, err
	}
	detail := toRecurringExpenseDetail(*re, s.opts.today())
	return &detail, nil
}

// UpdateRecurringExpense applies the given changes. When the billing date or
// the reminder lead time is part of the update, the open bill reminders are
// replaced by a freshly derived one.
func (s *recurringExpenseService) UpdateRecurringExpense(userID, id string, update RecurringExpenseUpdate) (*RecurringExpenseResult, error) {
	re, err := findRecurringExpense(s.db, userID, id)
	if err != nil {
		return nil, err
	}

	if update.CategoryID != nil {
		category, err := findCategory(s.db, *update.CategoryID)
		if err != nil {
			return nil, err
		}
		re.CategoryID = category.ID
	}
	if update.Name != nil {
		if strings.TrimSpace(*update.Name) == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "name is required")
		}
		re.Name = *update.Name
	}
	if update.Description != nil {
		re.Description = *update.Description
	}
	if update.Amount != nil {
		if !update.Amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		if err := validateAmount("amount", *update.Amount); err != nil {
			return nil, err
		}
		re.Amount = models.NewMoney(*update.Amount)
	}
	if update.BillingCycle != nil {
		if !update.BillingCycle.IsValid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid billing cycle")
		}
		re.BillingCycle = *update.BillingCycle
	}
	if update.NextBillingDate != nil {
		if update.NextBillingDate.IsZero() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "next billing date is required")
		}
		re.NextBillingDate = *update.NextBillingDate
	}
	if update.PaymentMethod != nil {
		re.PaymentMethod = *update.PaymentMethod
	}
	if update.WebsiteURL != nil {
		re.WebsiteURL = *update.WebsiteURL
	}
	if update.IsActive != nil {
		re.IsActive = *update.IsActive
	}
	if update.ReminderDays != nil {
		if *update.ReminderDays < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "reminder days cannot be negative")
		}
		re.ReminderDays = *update.ReminderDays
	}

	result := &RecurringExpenseResult{RemovedReminderIDs: []string{}}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(re).Error; err != nil {
			return err
		}
		if !update.ReschedulesReminder() {
			return nil
		}
		reminder, removed, err := replaceBillReminder(tx, re, s.opts.loc)
		if err != nil {
			return err
		}
		result.Reminder = reminder
		result.RemovedReminderIDs = removed
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	detail, err := s.GetRecurringExpenseByID(userID, id)
	if err != nil {
		return nil, err
	}
	result.RecurringExpense = detail
	return result, nil
}

// DeleteRecurringExpense removes a subscription and its reminders. Past
// payments are kept and lose their link.
func (s *recurringExpenseService) DeleteRecurringExpense(userID, id string) error {
	re, err := findRecurringExpense(s.db, userID, id)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Transaction{}).
			Where("recurring_expense_id = ?", re.ID).
			Update("recurring_expense_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("recurring_expense_id = ?", re.ID).Delete(&models.Reminder{}).Error; err != nil {
			return err
		}
		return tx.Delete(re).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// RecordPayment books the bill as an expense, moves the subscription to its
// next billing date and re-derives the bill reminder.
func (s *recurringExpenseService) RecordPayment(userID, id string, date *models.Date) (*PaymentResult, error) {
	re, err := findRecurringExpense(s.db, userID, id)
	if err != nil {
		return nil, err
	}

	paidOn := s.opts.today()
	if date != nil && !date.IsZero() {
		paidOn = *date
	}

	subscriptionID := re.ID
	transaction := &models.Transaction{
		UserID:             userID,
		CategoryID:         re.CategoryID,
		RecurringExpenseID: &subscriptionID,
		Title:              re.Name,
		Amount:             re.Amount,
		TransactionType:    models.TransactionTypeExpense,
		Date:               paidOn,
		PaymentMethod:      re.PaymentMethod,
	}

	result := &PaymentResult{}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		budgetReminders, err := createTransactionWithDB(tx, transaction, s.opts.now())
		if err != nil {
			return err
		}
		result.BudgetReminders = budgetReminders

		re.NextBillingDate = re.BillingCycle.Advance(re.NextBillingDate)
		if err := tx.Omit(clause.Associations).Save(re).Error; err != nil {
			return err
		}

		reminder, removed, err := replaceBillReminder(tx, re, s.opts.loc)
		if err != nil {
			return err
		}
		result.Reminder = reminder
		result.RemovedReminderIDs = removed
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	detail, err := s.GetRecurringExpenseByID(userID, id)
	if err != nil {
		return nil, err
	}
	result.RecurringExpense = detail

	transaction.Category = detail.Category
	transaction.RecurringExpense = &detail.RecurringExpense
	txDetail := toTransactionDetail(*transaction)
	result.Transaction = &txDetail
	return result, nil
}

// GetSummary aggregates the user's active subscriptions as of today.
func (s *recurringExpenseService) GetSummary(userID string) (*RecurringExpenseSummary, error) {
	var expenses []models.RecurringExpense
	if err := s.db.Where("user_id = ? AND is_active = ?", userID, true).Find(&expenses).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	today := s.opts.today()
	summary := &RecurringExpenseSummary{
		ActiveCount:      int64(len(expenses)),
		TotalMonthlyCost: models.NewMoney(decimal.Zero),
	}
	for i := range expenses {
		status := expenses[i].Billing(today)
		summary.TotalMonthlyCost = models.NewMoney(summary.TotalMonthlyCost.Add(status.MonthlyCost.Decimal))
		if status.NeedsReminder {
			summary.NeedingReminder++
		}
		if status.IsOverdue {
			summary.Overdue++
		}
	}
	return summary, nil
}

func (s *recurringExpenseService) loadDetailed(db *gorm.DB, userID, id string) (*models.RecurringExpense, error) {
	var re models.RecurringExpense
	if err := db.Preload("Category").Where("id = ? AND user_id = ?", id, userID).First(&re).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &re, nil
}

// findRecurringExpense loads one of the user's subscriptions; other users'
// subscriptions are reported as not found.
func findRecurringExpense(db *gorm.DB, userID, id string) (*models.RecurringExpense, error) {
	var re models.RecurringExpense
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&re).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrRecurringExpenseNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &re, nil
}
