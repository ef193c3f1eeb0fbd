package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "billnudge/internal/errors"
	"billnudge/internal/models"
	"billnudge/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db   *gorm.DB
	opts options
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, opts ...Option) TransactionServicer {
	return &transactionService{db: db, opts: newOptions(opts)}
}

// CreateTransaction records a transaction. Expenses re-evaluate the budget of
// their category and month, which may raise a budget_check reminder.
func (s *transactionService) CreateTransaction(userID string, in TransactionInput) (*TransactionResult, error) {
	if !in.Amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if err := validateAmount("amount", in.Amount); err != nil {
		return nil, err
	}
	if !in.TransactionType.IsValid() {
		return nil, apperrors.ErrInvalidTransactionType
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}

	category, err := findCategory(s.db, in.CategoryID)
	if err != nil {
		return nil, err
	}

	var subscription *models.RecurringExpense
	if in.RecurringExpenseID != nil {
		subscription, err = findRecurringExpense(s.db, userID, *in.RecurringExpenseID)
		if err != nil {
			return nil, err
		}
	}

	date := s.opts.today()
	if in.Date != nil && !in.Date.IsZero() {
		date = *in.Date
	}

	transaction := &models.Transaction{
		UserID:             userID,
		CategoryID:         category.ID,
		RecurringExpenseID: in.RecurringExpenseID,
		Title:              in.Title,
		Amount:             models.NewMoney(in.Amount),
		TransactionType:    in.TransactionType,
		Date:               date,
		PaymentMethod:      in.PaymentMethod,
		WasImpulsive:       in.WasImpulsive,
		Notes:              in.Notes,
		Tags:               in.Tags,
	}

	var reminders []models.Reminder
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		reminders, txErr = createTransactionWithDB(tx, transaction, s.opts.now())
		return txErr
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	transaction.Category = category
	transaction.RecurringExpense = subscription
	detail := toTransactionDetail(*transaction)
	return &TransactionResult{Transaction: &detail, Reminders: reminders}, nil
}

// createTransactionWithDB inserts a transaction and, for expenses, evaluates
// the budget alert inside the same database transaction.
func createTransactionWithDB(tx *gorm.DB, transaction *models.Transaction, now time.Time) ([]models.Reminder, error) {
	if err := tx.Create(transaction).Error; err != nil {
		return nil, err
	}
	if transaction.TransactionType != models.TransactionTypeExpense {
		return []models.Reminder{}, nil
	}
	return alertForExpense(tx, transaction.UserID, transaction.CategoryID, transaction.Date, now)
}

// GetUserTransactions retrieves a paginated, filtered list of the user's
// transactions, newest first.
func (s *transactionService) GetUserTransactions(userID string, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[TransactionDetail], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").Preload("RecurringExpense").
		Order("date DESC").Order("created_at DESC").
		Scopes(pagination.Paginate(page)).
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.MapPage(
		pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems),
		toTransactionDetail,
	)
	return &result, nil
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.Type != nil {
		q = q.Where("transaction_type = ?", *f.Type)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.RecurringExpenseID != nil {
		q = q.Where("recurring_expense_id = ?", *f.RecurringExpenseID)
	}
	if f.WasImpulsive != nil {
		q = q.Where("was_impulsive = ?", *f.WasImpulsive)
	}
	return q
}

// GetTransactionByID retrieves a transaction by ID for a specific user
func (s *transactionService) GetTransactionByID(userID, transactionID string) (*TransactionDetail, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").Preload("RecurringExpense").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	detail := toTransactionDetail(transaction)
	return &detail, nil
}

// DeleteTransaction deletes a transaction. Reminders already raised by it are kept.
func (s *transactionService) DeleteTransaction(userID, transactionID string) error {
	res := s.db.Where("id = ? AND user_id = ?", transactionID, userID).Delete(&models.Transaction{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}
