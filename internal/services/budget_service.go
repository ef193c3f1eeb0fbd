package services

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "billnudge/internal/errors"
	"billnudge/internal/models"
	"billnudge/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db   *gorm.DB
	opts options
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB, opts ...Option) BudgetServicer {
	return &budgetService{db: db, opts: newOptions(opts)}
}

var decimalOne = decimal.NewFromInt(1)

func validateBudgetFigures(amount decimal.Decimal, threshold decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "budget amount cannot be negative")
	}
	if err := validateAmount("budget amount", amount); err != nil {
		return err
	}
	if threshold.IsNegative() || threshold.GreaterThan(decimalOne) {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "alert threshold must be between 0 and 1")
	}
	return nil
}

// CreateBudget creates a monthly budget for a category and evaluates its
// alert against the expenses already recorded in that month.
func (s *budgetService) CreateBudget(userID string, in BudgetInput) (*BudgetResult, error) {
	if in.Month < 1 || in.Month > 12 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "month must be between 1 and 12")
	}
	if in.Year < 1 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "year is required")
	}
	threshold := models.DefaultAlertThreshold
	if in.AlertThreshold != nil {
		threshold = *in.AlertThreshold
	}
	if err := validateBudgetFigures(in.BudgetAmount, threshold); err != nil {
		return nil, err
	}

	category, err := findCategory(s.db, in.CategoryID)
	if err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Budget{}).
		Where("user_id = ? AND category_id = ? AND month = ? AND year = ?", userID, category.ID, in.Month, in.Year).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateBudget
	}

	budget := &models.Budget{
		UserID:         userID,
		CategoryID:     category.ID,
		Month:          in.Month,
		Year:           in.Year,
		BudgetAmount:   models.NewMoney(in.BudgetAmount),
		AlertThreshold: threshold,
	}

	var (
		reminder *models.Reminder
		progress models.BudgetProgress
	)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(budget).Error; err != nil {
			return err
		}
		var txErr error
		reminder, progress, txErr = evaluateBudgetAlert(tx, budget, category.Name, s.opts.now())
		return txErr
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateBudget
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	budget.Category = category
	detail := toBudgetDetail(*budget, progress)
	return &BudgetResult{Budget: &detail, Reminder: reminder}, nil
}

// GetUserBudgets returns a paginated list of the user's budgets, most recent period first.
func (s *budgetService) GetUserBudgets(userID string, page pagination.PageRequest, filter BudgetFilter) (*pagination.PageResponse[BudgetDetail], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)
	if filter.Month != nil {
		base = base.Where("month = ?", *filter.Month)
	}
	if filter.Year != nil {
		base = base.Where("year = ?", *filter.Year)
	}
	if filter.CategoryID != nil {
		base = base.Where("category_id = ?", *filter.CategoryID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").
		Order("year DESC").Order("month DESC").
		Scopes(pagination.Paginate(page)).
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	details := make([]BudgetDetail, 0, len(budgets))
	for i := range budgets {
		progress, err := budgetProgress(s.db, &budgets[i])
		if err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		details = append(details, toBudgetDetail(budgets[i], progress))
	}

	result := pagination.NewPageResponse(details, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget with its progress if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID string) (*BudgetDetail, error) {
	budget, err := findBudget(s.db, userID, budgetID)
	if err != nil {
		return nil, err
	}
	progress, err := budgetProgress(s.db, budget)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	detail := toBudgetDetail(*budget, progress)
	return &detail, nil
}

// UpdateBudget changes the amount or threshold and re-evaluates the alert.
func (s *budgetService) UpdateBudget(userID, budgetID string, update BudgetUpdate) (*BudgetResult, error) {
	budget, err := findBudget(s.db, userID, budgetID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if update.BudgetAmount != nil {
		budget.BudgetAmount = models.NewMoney(*update.BudgetAmount)
		updates["budget_amount"] = *update.BudgetAmount
	}
	if update.AlertThreshold != nil {
		budget.AlertThreshold = *update.AlertThreshold
		updates["alert_threshold"] = *update.AlertThreshold
	}
	if err := validateBudgetFigures(budget.BudgetAmount.Decimal, budget.AlertThreshold); err != nil {
		return nil, err
	}

	var (
		reminder *models.Reminder
		progress models.BudgetProgress
	)
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Budget{}).Where("id = ?", budget.ID).Updates(updates).Error; err != nil {
				return err
			}
		}
		var txErr error
		reminder, progress, txErr = evaluateBudgetAlert(tx, budget, categoryName(budget.Category), s.opts.now())
		return txErr
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	detail := toBudgetDetail(*budget, progress)
	return &BudgetResult{Budget: &detail, Reminder: reminder}, nil
}

// DeleteBudget removes a budget and its reminders.
func (s *budgetService) DeleteBudget(userID, budgetID string) error {
	budget, err := findBudget(s.db, userID, budgetID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("budget_id = ?", budget.ID).Delete(&models.Reminder{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Budget{}, "id = ?", budget.ID).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// GetBudgetProgress calculates spending vs budget for the budget's month.
func (s *budgetService) GetBudgetProgress(userID, budgetID string) (*models.BudgetProgress, error) {
	budget, err := findBudget(s.db, userID, budgetID)
	if err != nil {
		return nil, err
	}
	progress, err := budgetProgress(s.db, budget)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &progress, nil
}

func findBudget(db *gorm.DB, userID, budgetID string) (*models.Budget, error) {
	var budget models.Budget
	if err := db.Preload("Category").Where("id = ? AND user_id = ?", budgetID, userID).First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}
