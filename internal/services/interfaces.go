package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"billnudge/internal/models"
	"billnudge/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	AttemptLogin(email, password string) (*models.User, error)
	StoreRefreshTokenHash(userID, tokenHash string) error
	GetRefreshTokenHash(userID string) (string, error)
	UpdateTelegramChat(userID string, chatID *int64) (*models.User, error)
}

// CategoryFilter holds optional filter parameters for listing categories.
type CategoryFilter struct {
	IsRecurring *bool
}

// CategoryUpdate lists the category fields to change; nil fields are left alone.
type CategoryUpdate struct {
	Name        *string
	Description *string
	Icon        *string
	Color       *string
	IsRecurring *bool
}

// CategoryServicer defines the contract for category-related business logic.
// Categories are shared by all users.
type CategoryServicer interface {
	CreateCategory(name, description, icon, color string, isRecurring bool) (*models.Category, error)
	GetCategories(page pagination.PageRequest, filter CategoryFilter) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(categoryID string) (*models.Category, error)
	UpdateCategory(categoryID string, update CategoryUpdate) (*models.Category, error)
	DeleteCategory(categoryID string) error
}

// TransactionInput holds the fields of a new transaction.
type TransactionInput struct {
	CategoryID         string
	RecurringExpenseID *string
	Title              string
	Amount             decimal.Decimal
	TransactionType    models.TransactionType
	Date               *models.Date
	PaymentMethod      string
	WasImpulsive       bool
	Notes              string
	Tags               string
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate           *models.Date
	ToDate             *models.Date
	Type               *models.TransactionType
	CategoryID         *string
	RecurringExpenseID *string
	WasImpulsive       *bool
}

// TransactionDetail is a transaction with its category display fields.
type TransactionDetail struct {
	models.Transaction
	CategoryName         string  `json:"category_name"`
	CategoryIcon         string  `json:"category_icon"`
	CategoryColor        string  `json:"category_color"`
	RecurringExpenseName *string `json:"recurring_expense_name"`
}

// TransactionResult is a created transaction plus any budget reminders it caused.
type TransactionResult struct {
	Transaction *TransactionDetail `json:"transaction"`
	Reminders   []models.Reminder  `json:"reminders"`
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID string, in TransactionInput) (*TransactionResult, error)
	GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionDetail], error)
	GetTransactionByID(userID, transactionID string) (*TransactionDetail, error)
	DeleteTransaction(userID, transactionID string) error
}

// RecurringExpenseInput holds the fields of a new recurring expense.
type RecurringExpenseInput struct {
	CategoryID      string
	Name            string
	Description     string
	Amount          decimal.Decimal
	BillingCycle    models.BillingCycle
	NextBillingDate models.Date
	PaymentMethod   string
	WebsiteURL      string
	IsActive        *bool
	ReminderDays    *int
}

// RecurringExpenseUpdate lists the fields to change; nil fields are left alone.
type RecurringExpenseUpdate struct {
	CategoryID      *string
	Name            *string
	Description     *string
	Amount          *decimal.Decimal
	BillingCycle    *models.BillingCycle
	NextBillingDate *models.Date
	PaymentMethod   *string
	WebsiteURL      *string
	IsActive        *bool
	ReminderDays    *int
}

// ReschedulesReminder reports whether the update touches the bill reminder schedule.
func (u RecurringExpenseUpdate) ReschedulesReminder() bool {
	return u.NextBillingDate != nil || u.ReminderDays != nil
}

// RecurringExpenseDetail is a recurring expense with its derived billing status.
type RecurringExpenseDetail struct {
	models.RecurringExpense
	models.BillingStatus
	CategoryName  string `json:"category_name"`
	CategoryIcon  string `json:"category_icon"`
	CategoryColor string `json:"category_color"`
}

// RecurringExpenseResult is returned by create and update.
type RecurringExpenseResult struct {
	RecurringExpense   *RecurringExpenseDetail `json:"recurring_expense"`
	Reminder           *models.Reminder        `json:"reminder"`
	RemovedReminderIDs []string                `json:"removed_reminder_ids"`
}

// PaymentResult is returned when a bill payment is recorded.
type PaymentResult struct {
	Transaction        *TransactionDetail      `json:"transaction"`
	RecurringExpense   *RecurringExpenseDetail `json:"recurring_expense"`
	Reminder           *models.Reminder        `json:"reminder"`
	RemovedReminderIDs []string                `json:"removed_reminder_ids"`
	BudgetReminders    []models.Reminder       `json:"budget_reminders"`
}

// RecurringExpenseSummary aggregates a user's active subscriptions.
type RecurringExpenseSummary struct {
	ActiveCount      int64        `json:"active_count"`
	TotalMonthlyCost models.Money `json:"total_monthly_cost"`
	NeedingReminder  int          `json:"needing_reminder"`
	Overdue          int          `json:"overdue"`
}

// RecurringExpenseServicer defines the contract for subscription and bill logic.
type RecurringExpenseServicer interface {
	CreateRecurringExpense(userID string, in RecurringExpenseInput) (*RecurringExpenseResult, error)
	GetUserRecurringExpenses(userID string, page pagination.PageRequest, isActive *bool) (*pagination.PageResponse[RecurringExpenseDetail], error)
	GetRecurringExpenseByID(userID, id string) (*RecurringExpenseDetail, error)
	UpdateRecurringExpense(userID, id string, update RecurringExpenseUpdate) (*RecurringExpenseResult, error)
	DeleteRecurringExpense(userID, id string) error
	RecordPayment(userID, id string, date *models.Date) (*PaymentResult, error)
	GetSummary(userID string) (*RecurringExpenseSummary, error)
}

// BudgetInput holds the fields of a new budget.
type BudgetInput struct {
	CategoryID     string
	Month          int
	Year           int
	BudgetAmount   decimal.Decimal
	AlertThreshold *decimal.Decimal
}

// BudgetUpdate lists the fields to change; nil fields are left alone.
type BudgetUpdate struct {
	BudgetAmount   *decimal.Decimal
	AlertThreshold *decimal.Decimal
}

// BudgetFilter holds optional filter parameters for listing budgets.
type BudgetFilter struct {
	Month      *int
	Year       *int
	CategoryID *string
}

// BudgetDetail is a budget with its derived spending progress.
type BudgetDetail struct {
	models.Budget
	models.BudgetProgress
	CategoryName  string `json:"category_name"`
	CategoryIcon  string `json:"category_icon"`
	CategoryColor string `json:"category_color"`
}

// BudgetResult is returned by create and update: the budget plus the alert
// reminder, if one was raised.
type BudgetResult struct {
	Budget   *BudgetDetail    `json:"budget"`
	Reminder *models.Reminder `json:"reminder"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID string, in BudgetInput) (*BudgetResult, error)
	GetUserBudgets(userID string, page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[BudgetDetail], error)
	GetBudgetByID(userID, budgetID string) (*BudgetDetail, error)
	UpdateBudget(userID, budgetID string, update BudgetUpdate) (*BudgetResult, error)
	DeleteBudget(userID, budgetID string) error
	GetBudgetProgress(userID, budgetID string) (*models.BudgetProgress, error)
}

// ReminderInput holds the fields of a new reminder.
type ReminderInput struct {
	Title              string
	Message            string
	ReminderType       models.ReminderType
	DueDate            time.Time
	Frequency          models.ReminderFrequency
	RecurringExpenseID *string
	BudgetID           *string
}

// ReminderUpdate lists the fields to change; nil fields are left alone.
type ReminderUpdate struct {
	Title        *string
	Message      *string
	ReminderType *models.ReminderType
	DueDate      *time.Time
	Frequency    *models.ReminderFrequency
	SnoozedUntil *time.Time
	ClearSnooze  bool
	IsCompleted  *bool
}

// ReminderFilter holds optional filter parameters for listing reminders.
type ReminderFilter struct {
	IsCompleted  *bool
	ReminderType *models.ReminderType
	DueBefore    *time.Time
	Status       *models.ReminderStatus
}

// ReminderDetail is a reminder with its derived state and link names.
type ReminderDetail struct {
	models.Reminder
	models.ReminderState
	RecurringExpenseName *string `json:"recurring_expense_name"`
	BudgetCategoryName   *string `json:"budget_category_name"`
}

// CompletionResult is a completed reminder and its successor, if any.
type CompletionResult struct {
	Reminder *ReminderDetail `json:"reminder"`
	Next     *ReminderDetail `json:"next_reminder"`
}

// Snooze bounds, in hours.
const (
	DefaultSnoozeHours = 2
	MaxSnoozeHours     = 168
)

// ReminderServicer defines the contract for reminder lifecycle logic.
type ReminderServicer interface {
	CreateReminder(userID string, in ReminderInput) (*ReminderDetail, error)
	GetUserReminders(userID string, page pagination.PageRequest, filter ReminderFilter) (*pagination.PageResponse[ReminderDetail], error)
	GetReminderByID(userID, reminderID string) (*ReminderDetail, error)
	UpdateReminder(userID, reminderID string, update ReminderUpdate) (*ReminderDetail, error)
	DeleteReminder(userID, reminderID string) error
	SnoozeReminder(userID, reminderID string, hours int) (*ReminderDetail, error)
	CompleteReminder(userID, reminderID string) (*CompletionResult, error)
}

// DispatchReport summarizes one notifier tick.
type DispatchReport struct {
	Selected  int
	Delivered int
	Failed    int
}

// DispatchServicer delivers due reminders to the configured notifiers.
type DispatchServicer interface {
	DispatchDue(ctx context.Context) (*DispatchReport, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
